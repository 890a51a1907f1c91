package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeProbe(t *testing.T, lookup CountryLookup, decorate func(r *http.Request)) (string, string) {
	t.Helper()
	var locale, country string
	handler := Locale("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if decorate != nil {
		decorate(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestLocaleFromXLocaleHeader(t *testing.T) {
	locale, _ := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "PT-BR")
	})
	if locale != "pt" {
		t.Fatalf("locale = %q, want pt", locale)
	}
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	locale, country := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "fr-CA,en;q=0.8")
	})
	if locale != "fr" {
		t.Fatalf("locale = %q, want fr", locale)
	}
	if country != "CA" {
		t.Fatalf("country = %q, want CA from locale region", country)
	}
}

func TestLocaleDefault(t *testing.T) {
	locale, country := localeProbe(t, nil, nil)
	if locale != "en" {
		t.Fatalf("locale = %q, want default en", locale)
	}
	if country != "" {
		t.Fatalf("country = %q, want empty without hints", country)
	}
}

func TestCountryFromHeaderHint(t *testing.T) {
	_, country := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("CF-IPCountry", "de")
	})
	if country != "DE" {
		t.Fatalf("country = %q, want DE", country)
	}
}

func TestCountryFromLookup(t *testing.T) {
	var askedIP string
	lookup := func(ip string) (string, error) {
		askedIP = ip
		return "id", nil
	}
	_, country := localeProbe(t, lookup, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	})
	if country != "ID" {
		t.Fatalf("country = %q, want ID from lookup", country)
	}
	if askedIP != "203.0.113.7" {
		t.Fatalf("lookup ip = %q, want first forwarded address", askedIP)
	}
}

func TestCountryLookupErrorIsIgnored(t *testing.T) {
	lookup := func(ip string) (string, error) {
		return "", errors.New("db unavailable")
	}
	_, country := localeProbe(t, lookup, nil)
	if country != "" {
		t.Fatalf("country = %q, want empty when lookup fails", country)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	if ip := ClientIP(req); ip != "192.0.2.1" {
		t.Fatalf("ClientIP = %q, want remote addr host", ip)
	}
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	if ip := ClientIP(req); ip != "198.51.100.9" {
		t.Fatalf("ClientIP = %q, want forwarded address", ip)
	}
}
