package importer

import "strings"

// Display names for domains we commonly import from. Anything else falls
// back to a title-cased bare domain.
var sourceNames = map[string]string{
	"nytimes.com":        "The New York Times",
	"washingtonpost.com": "The Washington Post",
	"wsj.com":            "The Wall Street Journal",
	"bbc.com":            "BBC News",
	"bbc.co.uk":          "BBC News",
	"cnn.com":            "CNN",
	"reuters.com":        "Reuters",
	"apnews.com":         "Associated Press",
	"theguardian.com":    "The Guardian",
	"npr.org":            "NPR",
	"politico.com":       "Politico",
	"bloomberg.com":      "Bloomberg",
	"axios.com":          "Axios",
	"nbcnews.com":        "NBC News",
	"cbsnews.com":        "CBS News",
	"abcnews.go.com":     "ABC News",
	"foxnews.com":        "Fox News",
	"usatoday.com":       "USA Today",
	"latimes.com":        "Los Angeles Times",
	"thehill.com":        "The Hill",
	"propublica.org":     "ProPublica",
	"kcur.org":           "KCUR",
	"kansascity.com":     "The Kansas City Star",
}

// SourceNameForDomain maps a story's domain to a display name. Unknown
// domains title-case their first label, so "somepaper.example.com" becomes
// "Somepaper".
func SourceNameForDomain(domain string) string {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	if domain == "" {
		return ""
	}
	if name, ok := sourceNames[domain]; ok {
		return name
	}

	label := domain
	if i := strings.Index(domain, "."); i > 0 {
		label = domain[:i]
	}
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
