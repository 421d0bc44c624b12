package scraper

import (
	"regexp"
	"strings"
)

// BotDetector recognizes bot walls and CAPTCHA interstitials so a blocked
// fetch is reported as a fetch failure instead of being scanned for prices.
type BotDetector struct {
	patterns []*regexp.Regexp
}

// NewBotDetector creates a new bot detector
func NewBotDetector() *BotDetector {
	return &BotDetector{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)please verify you are human`),
			regexp.MustCompile(`(?i)security check`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)cloudflare`),
			regexp.MustCompile(`(?i)ddos protection`),
			regexp.MustCompile(`(?i)too many requests`),
			regexp.MustCompile(`(?i)captcha`),
		},
	}
}

// DetectBotWall checks whether the page content indicates a bot wall.
// Returns the first matched pattern as the reason.
func (bd *BotDetector) DetectBotWall(pageContent, pageTitle string) (bool, string) {
	content := strings.ToLower(pageContent + " " + pageTitle)

	for _, pattern := range bd.patterns {
		if pattern.MatchString(content) {
			return true, pattern.String()
		}
	}

	return false, ""
}
