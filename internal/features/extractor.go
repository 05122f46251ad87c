// Package features turns raw URL strings into the fixed feature records the
// URL risk model was trained on. The same extractor runs at training time and
// at inference time so the two can never drift apart.
package features

import (
	"math"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// URLFeatureRecord is the structural feature set for a single URL.
// It is immutable once computed.
type URLFeatureRecord struct {
	URL              string  `json:"url"`
	Length           int     `json:"url_length"`
	DigitCount       int     `json:"num_digits"`
	LetterCount      int     `json:"num_letters"`
	SpecialCharCount int     `json:"num_special_chars"`
	DotCount         int     `json:"num_dots"`
	SlashCount       int     `json:"num_slashes"`
	Entropy          float64 `json:"entropy"`
	Domain           string  `json:"domain"`
}

// Extract computes the feature record for a raw URL string. The input does
// not have to be a valid URI; every malformed input still yields a record.
func Extract(rawURL string) *URLFeatureRecord {
	rec := &URLFeatureRecord{
		URL:    rawURL,
		Length: utf8.RuneCountInString(rawURL),
	}

	for _, r := range rawURL {
		switch {
		case unicode.IsDigit(r):
			rec.DigitCount++
		case unicode.IsLetter(r):
			rec.LetterCount++
		default:
			rec.SpecialCharCount++
		}
	}
	rec.DotCount = strings.Count(rawURL, ".")
	rec.SlashCount = strings.Count(rawURL, "/")
	rec.Entropy = Entropy(rawURL)
	rec.Domain, _ = RegistrableDomain(rawURL)

	return rec
}

// ExtractAll computes feature records for a batch of URLs.
func ExtractAll(urls []string) []*URLFeatureRecord {
	records := make([]*URLFeatureRecord, 0, len(urls))
	for _, u := range urls {
		records = append(records, Extract(u))
	}
	return records
}

// Entropy returns the Shannon entropy in bits over the distribution of
// distinct characters in s. An empty string has entropy 0.
func Entropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}

	entropy := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// RegistrableDomain extracts the registrable second-level label and the public
// suffix from a URL, e.g. ("google", "com") for "https://mail.google.com/x".
// Both are empty when no registrable domain can be determined; extraction
// never fails with an error.
func RegistrableDomain(rawURL string) (domain, suffix string) {
	host := hostOf(rawURL)
	if host == "" {
		return "", ""
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", ""
	}

	dot := strings.Index(etld1, ".")
	if dot <= 0 || dot == len(etld1)-1 {
		return "", ""
	}
	return etld1[:dot], etld1[dot+1:]
}

// hostOf pulls the host out of a URL-ish string, tolerating missing schemes.
func hostOf(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}

	if u, err := url.Parse(s); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}

	// No scheme: retry as a bare host so "www.google.com/x" still resolves.
	if !strings.Contains(s, "://") {
		if u, err := url.Parse("http://" + s); err == nil && u.Host != "" {
			return strings.ToLower(u.Hostname())
		}
	}
	return ""
}
