package safety

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/weburl"
	"golang.org/x/net/publicsuffix"
)

// Scoring constants.
const (
	// MaxSafeScore is the highest low-weight score that still classifies a
	// URL as safe. One HTTPS warning plus one keyword warning stays safe.
	MaxSafeScore = 2

	// HighRiskPenalty is added to the score for every high-risk flag.
	HighRiskPenalty = 100

	// InvalidScore is the score of input that cannot be parsed as a web URL.
	InvalidScore = math.MaxInt
)

// Reason texts reported in verdicts.
const (
	ReasonInsecureScheme = "URL must use HTTPS"
	ReasonIPHost         = "IP address hosts are blocked"
	ReasonSuspiciousTLD  = "Suspicious top-level domain"
	reasonKeywordsPrefix = "Contains suspicious terms: "
	reasonInvalidPrefix  = "Invalid URL: "
)

// DefaultSuspiciousTLDs are top-level domains that are cheap to register and
// disproportionately used for phishing and malware.
var DefaultSuspiciousTLDs = []string{
	"zip", "review", "country", "stream", "download", "gq", "work", "men", "loan", "click", "link",
}

// DefaultSuspiciousKeywords are terms associated with phishing and scam pages.
var DefaultSuspiciousKeywords = []string{
	"login", "verify", "update", "account", "secure", "free", "gift", "winner", "bitcoin", "crypto", "invest",
}

// ipv4HostPattern matches a dotted-quad host.
var ipv4HostPattern = regexp.MustCompile(`^(?:\d{1,3}\.){3}\d{1,3}$`)

// Evaluator classifies URLs. The zero value is not usable; call NewEvaluator.
// An Evaluator is immutable after construction and safe for concurrent use.
type Evaluator struct {
	tlds     map[string]struct{}
	keywords []string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSuspiciousTLDs replaces the suspicious top-level domain list.
func WithSuspiciousTLDs(tlds ...string) Option {
	return func(e *Evaluator) {
		e.tlds = make(map[string]struct{}, len(tlds))
		for _, tld := range tlds {
			e.tlds[strings.ToLower(strings.TrimPrefix(tld, "."))] = struct{}{}
		}
	}
}

// WithSuspiciousKeywords replaces the keyword list. Keywords are matched
// case-insensitively as substrings.
func WithSuspiciousKeywords(keywords ...string) Option {
	return func(e *Evaluator) {
		e.keywords = make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				e.keywords = append(e.keywords, kw)
			}
		}
	}
}

// NewEvaluator creates an Evaluator with the default lists.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	WithSuspiciousTLDs(DefaultSuspiciousTLDs...)(e)
	WithSuspiciousKeywords(DefaultSuspiciousKeywords...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate parses raw and classifies it. Input that is not an absolute
// http/https URL yields an unsafe verdict with InvalidScore.
func (e *Evaluator) Evaluate(raw string) model.Verdict {
	u, err := weburl.Validate(raw)
	if err != nil {
		return invalidVerdict(err)
	}
	return e.EvaluateURL(u)
}

// EvaluateURL classifies an already parsed URL.
func (e *Evaluator) EvaluateURL(u *url.URL) model.Verdict {
	if err := weburl.Check(u); err != nil {
		return invalidVerdict(err)
	}

	host := strings.ToLower(u.Hostname())

	var highRisk, warnings []string
	if ipv4HostPattern.MatchString(host) {
		highRisk = append(highRisk, ReasonIPHost)
	}
	if e.suspiciousTLD(host) {
		highRisk = append(highRisk, ReasonSuspiciousTLD)
	}

	score := len(highRisk) * HighRiskPenalty
	if !strings.EqualFold(u.Scheme, "https") {
		warnings = append(warnings, ReasonInsecureScheme)
		score++
	}
	if hits := e.keywordHits(u); len(hits) > 0 {
		warnings = append(warnings, reasonKeywordsPrefix+strings.Join(hits, ", "))
		score++
	}

	reasons := append(highRisk, warnings...)
	return model.Verdict{
		Safe:    len(highRisk) == 0 && score <= MaxSafeScore,
		Score:   score,
		Reasons: reasons,
		Domain:  registrableDomain(host),
	}
}

// suspiciousTLD reports whether the last dot-delimited label of host is listed.
func (e *Evaluator) suspiciousTLD(host string) bool {
	host = strings.TrimSuffix(host, ".")
	tld := host
	if i := strings.LastIndexByte(host, '.'); i >= 0 {
		tld = host[i+1:]
	}
	_, ok := e.tlds[tld]
	return ok
}

// keywordHits returns the listed keywords found in the lowercased host,
// path and query, in list order.
func (e *Evaluator) keywordHits(u *url.URL) []string {
	haystack := strings.ToLower(strings.Join([]string{u.Hostname(), u.Path, u.RawQuery}, " "))

	hits := make([]string, 0)
	for _, kw := range e.keywords {
		if strings.Contains(haystack, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// registrableDomain returns the eTLD+1 of host, or an empty string for IP
// literals and hosts that are themselves public suffixes.
func registrableDomain(host string) string {
	if host == "" || ipv4HostPattern.MatchString(host) || strings.Contains(host, ":") {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.TrimSuffix(host, "."))
	if err != nil {
		return ""
	}
	return domain
}

func invalidVerdict(err error) model.Verdict {
	detail := strings.TrimPrefix(err.Error(), weburl.ErrInvalidURL.Error()+": ")
	return model.Verdict{
		Safe:    false,
		Score:   InvalidScore,
		Reasons: []string{reasonInvalidPrefix + detail},
	}
}
