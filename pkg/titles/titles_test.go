package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	cases := map[string]string{
		"Annual Report":           "annual-report",
		"  Annual   Report  ":     "annual-report",
		"Annual--Report":          "annual-report",
		"annual_report":           "annual-report",
		"Café / Policy 2024":      "cafe-policy-2024",
		"Q&A: What's next?":       "qa-whats-next",
		"Research . Lab - Update": "research-lab-update",
		"Отчёт":                   "отчет",
		"Бюджет  Отчёт_2024":      "бюджет-отчет-2024",
		"日本語の報告":                  "日本語の報告",
		"التقرير السنوي":          "التقرير-السنوي",
		"---":                     "",
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Strip(in), "Strip(%q)", in)
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Annual Report", Clean("  Annual \t Report\n"))
}

func TestCollides(t *testing.T) {
	assert.True(t, Collides("Annual Report", "Annual report", "annual-report"))
	assert.True(t, Collides("Annual Report", "annual_report", ""))
	assert.True(t, Collides("Annual Report", "The 2023 Annual Report Summary", "the-2023-annual-report-summary"))
	assert.True(t, Collides("Annual Report", "Annual Report 2023", "annual-report-2023"))
	assert.True(t, Collides("Annual Report", "Final annual report", "final-annual-report"))
	assert.False(t, Collides("Annual Report", "Annual Budget", "annual-budget"))
	assert.False(t, Collides("   ", "Anything", "anything"))
}

func TestCollidesNonLatinTitles(t *testing.T) {
	assert.NotEqual(t, Strip("日本語の報告"), Strip("年次報告"))
	assert.False(t, Collides("年次報告", "日本語の報告", Strip("日本語の報告")))
	assert.False(t, Collides("Отчёт", "Бюджет", Strip("Бюджет")))
	assert.True(t, Collides("Отчёт", "отчет", ""))
	assert.True(t, Collides("報告", "日本語の報告", ""))
}
