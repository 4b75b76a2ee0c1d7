package providers

import "fmt"

// 语言代码到显示名称的映射
var languageNames = map[string]string{
	"en": "English",
	"zh": "Chinese",
}

var localizedLanguageNames = map[string]string{
	"en": "英文",
	"zh": "中文",
}

// LanguageName returns the English display name for a language code.
// Unknown codes are returned unchanged.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// LocalizedLanguageName returns the Chinese label used inside prompts
func LocalizedLanguageName(code string) string {
	if name, ok := localizedLanguageNames[code]; ok {
		return name
	}
	return code
}

// systemPrompt is sent as the system message by chat-completion style providers
const systemPrompt = "你是一个专业的翻译助手，请直接返回翻译结果，不要添加任何解释或格式。"

// buildChatPrompt builds the user message for OpenAI and OpenRouter
func buildChatPrompt(text, from, to string) string {
	return fmt.Sprintf("请将以下%s文本翻译成%s：\n\n%s\n\n请直接返回翻译结果，不要添加任何解释。",
		LocalizedLanguageName(from), LocalizedLanguageName(to), text)
}

// buildMessagesPrompt builds the single user message for Anthropic
func buildMessagesPrompt(text, from, to string) string {
	return fmt.Sprintf("请将以下%s文本翻译成%s，只返回翻译结果，不要添加任何解释：\n\n%s",
		LocalizedLanguageName(from), LocalizedLanguageName(to), text)
}
