// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the robo TUI.
//
// Colors are lipgloss.AdaptiveColor values that switch between light and
// dark variants based on the terminal background. Theme bundles the composed
// styles for the header, message bubbles, source chips, banners and status
// bar.
//
// # Usage
//
//	theme := styles.NewTheme()
//	header := theme.HeaderTitle.Render("Robo AI - Map Advisor")
package styles
