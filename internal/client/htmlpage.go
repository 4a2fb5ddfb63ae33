package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// Stores behind a WAF, in maintenance mode or with a broken permalink setup answer
// REST calls with an HTML page. The title (or first heading) is enough to tell
// what happened.
func summarizeHTML(body []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	if !looksLikeHTML(trimmed) {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		log.Debugf("Failed to parse HTML body: %v", err)
		return "", false
	}

	for _, selector := range []string{"title", "h1", "body"} {
		text := strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
		if text != "" {
			return truncate(text, 120), true
		}
	}

	return "empty HTML page", true
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s[:min(len(s), 256)])
	return strings.HasPrefix(lower, "<!doctype html") ||
		strings.HasPrefix(lower, "<html") ||
		strings.Contains(lower, "<head") ||
		strings.Contains(lower, "<body")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
