package tui

import (
	"fmt"
	"strings"

	"quicktranslate/config/models"
	"quicktranslate/internal/providers"
	"quicktranslate/internal/utils"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(10)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// RenderMainView renders the settings form
func (m Model) RenderMainView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(50)

	b.WriteString(titleStyle.Render("QuickTranslate 设置"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	label := labelStyle
	if m.focus == FocusKey {
		label = focusedLabelStyle
	}
	b.WriteString(label.Render("API Key:"))
	b.WriteString(m.keyInput.View())
	b.WriteString("\n\n")

	label = labelStyle
	if m.focus == FocusModels {
		label = focusedLabelStyle
	}
	b.WriteString(label.Render("模型:"))
	b.WriteString("\n")
	b.WriteString(m.renderModelList(width))

	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.RenderStatusBar())
	return b.String()
}

func (m Model) renderModelList(width int) string {
	var b strings.Builder

	if m.loading && len(m.models) == 0 {
		b.WriteString(dimStyle.Render("  正在加载模型列表..."))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.models) == 0 {
		b.WriteString(dimStyle.Render("  暂无可用模型，按 ctrl+r 刷新"))
		b.WriteString("\n")
		return b.String()
	}

	visible := m.getVisibleModelListHeight()
	start := m.modelScrollOffset
	end := start + visible
	if end > len(m.models) {
		end = len(m.models)
	}

	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ 还有 %d 项...", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(m.renderModelLine(i, m.models[i], width))
		b.WriteString("\n")
	}
	if end < len(m.models) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ 还有 %d 项...", len(m.models)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderModelLine renders one catalog entry; the saved model is marked with ●
func (m Model) renderModelLine(index int, mc models.ModelConfig, width int) string {
	marker := "  "
	if mc.ID == m.savedModel {
		marker = "● "
	}
	name := mc.Name
	if name == "" {
		name = mc.ID
	}

	switch {
	case index == m.modelCursor && m.focus == FocusModels:
		return selectedStyle.Render(marker + utils.Truncate(name+"  "+mc.ID, width-2))
	case index == m.modelCursor:
		return activeStyle.Render(marker + utils.Truncate(name+"  "+mc.ID, width-2))
	default:
		return normalStyle.Render(marker+name) + "  " + dimStyle.Render(mc.ID)
	}
}

// getEffectiveWidth returns the render width, bounded for readability
func (m Model) getEffectiveWidth(defaultWidth int) int {
	if m.width <= 0 {
		return defaultWidth
	}
	w := m.width - 4
	if w > 80 {
		w = 80
	}
	if w < 30 {
		w = 30
	}
	return w
}

// RenderTestingView renders the connection test in progress
func (m Model) RenderTestingView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(40)

	b.WriteString(titleStyle.Render("连接测试"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	data := m.FormData()
	b.WriteString(dimStyle.Render("模型: " + data.Model))
	b.WriteString("\n")
	if kind, err := providers.ResolveKind(data.Model); err == nil {
		b.WriteString(dimStyle.Render("服务商: " + string(kind)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("API Key: " + utils.MaskAPIKey(data.APIKey)))
	b.WriteString("\n\n")

	b.WriteString(messageStyle.Render("⏳ 正在测试连接..."))
	b.WriteString("\n")
	return b.String()
}

// RenderHelpView renders the help panel
func (m Model) RenderHelpView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(50)

	b.WriteString(titleStyle.Render("快捷键帮助"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	sections := []string{"导航", "操作", "通用"}
	for i, group := range m.keys.FullHelp() {
		b.WriteString(sectionStyle.Render(sections[i]))
		b.WriteString("\n")
		for _, k := range group {
			b.WriteString(renderHelpLine(k.Help().Key, k.Help().Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("F1/Esc: 返回"))
	return b.String()
}

// renderHelpLine renders a single help line with key and description
func renderHelpLine(key, desc string) string {
	keyStyled := helpKeyStyle.Render(fmt.Sprintf("  %-10s", key))
	descStyled := normalStyle.Render(desc)
	return fmt.Sprintf("%s %s\n", keyStyled, descStyled)
}

// RenderStatusBar renders the bottom status bar
func (m Model) RenderStatusBar() string {
	var b strings.Builder

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ 错误: " + m.errorMsg))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString(messageStyle.Render("✓ " + m.message))
		b.WriteString("\n")
	}
	if m.errorMsg != "" || m.message != "" {
		b.WriteString("\n")
	}

	shortHelp := m.keys.ShortHelp()
	hints := make([]string, 0, len(shortHelp))
	for _, k := range shortHelp {
		hints = append(hints, fmt.Sprintf("%s %s", helpKeyStyle.Render(k.Help().Key), helpStyle.Render(k.Help().Desc)))
	}
	b.WriteString(strings.Join(hints, helpStyle.Render(" │ ")))
	return b.String()
}
