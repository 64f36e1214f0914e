package classifier_test

import (
	"testing"

	"github.com/jonesrussell/linktrack/internal/classifier"
)

func TestClassify_HumanBrowsers(t *testing.T) {
	c := classifier.New()

	agents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Version/17.5 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) Mobile/15E148",
	}
	for _, ua := range agents {
		if got := c.Classify(ua); got != classifier.Human {
			t.Fatalf("Classify(%q) = %v, want Human", ua, got)
		}
	}
}

func TestClassify_KnownCrawlers(t *testing.T) {
	c := classifier.New()

	agents := []string{
		"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
		"Twitterbot/1.0",
		"LinkedInBot/1.0 (compatible; Mozilla/5.0)",
		"Slackbot-LinkExpanding 1.0 (+https://api.slack.com/robots)",
		"WhatsApp/2.23.20",
		"Googlebot/2.1 (+http://www.google.com/bot.html)",
		"SomeRandomBot/3.0",
		"my-custom-crawler/0.1",
	}
	for _, ua := range agents {
		if got := c.Classify(ua); got != classifier.Bot {
			t.Fatalf("Classify(%q) = %v, want Bot", ua, got)
		}
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := classifier.New()

	if got := c.Classify("FACEBOOKEXTERNALHIT/1.1"); got != classifier.Bot {
		t.Fatalf("expected Bot for uppercase crawler UA, got %v", got)
	}
}

func TestClassify_EmptyUserAgentIsHuman(t *testing.T) {
	c := classifier.New()

	if got := c.Classify(""); got != classifier.Human {
		t.Fatalf("Classify(\"\") = %v, want Human", got)
	}
}

func TestClassify_ExtraSignatures(t *testing.T) {
	c := classifier.New("internal-crawler")

	if got := c.Classify("Internal-Crawler/1.0"); got != classifier.Bot {
		t.Fatalf("expected Bot for configured extra signature, got %v", got)
	}

	// Blank extras are ignored rather than matching everything.
	c = classifier.New("  ", "")
	if got := c.Classify("Mozilla/5.0 (plain browser)"); got != classifier.Human {
		t.Fatalf("expected Human with blank extra signatures, got %v", got)
	}
}

func TestVerdict_String(t *testing.T) {
	if classifier.Human.String() != "human" {
		t.Fatalf("Human.String() = %q", classifier.Human.String())
	}
	if classifier.Bot.String() != "bot" {
		t.Fatalf("Bot.String() = %q", classifier.Bot.String())
	}
}
