package alexa

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultUserAgent      = "AppleWebKit PitanguiBridge/2.2.635412.0-[HARDWARE=iPhone17_3][SOFTWARE=18.2][DEVICE=iPhone]"
	defaultAcceptLanguage = "en-CA,en-CA;q=1.0,ar-CA;q=0.9"
	acceptHeader          = "application/json; charset=utf-8"
	routinesVersion       = "3.0.255246"
)

// Session holds the captured app session replayed on every request.
// All values come straight out of a traffic capture of the Alexa app;
// nothing here is negotiated, refreshed or persisted.
type Session struct {
	cookie    string
	csrf      string
	appToken  string
	userAgent string
	language  string
}

// NewSession validates a captured session. The csrf token may be left
// empty, in which case it is pulled out of the cookie's csrf pair.
func NewSession(cookie, csrf, appToken, userAgent string) (*Session, error) {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		return nil, fmt.Errorf("cookie is required")
	}

	csrf = strings.TrimSpace(csrf)
	if csrf == "" {
		extracted, err := CSRFFromCookie(cookie)
		if err != nil {
			return nil, err
		}
		csrf = extracted
	}

	appToken = strings.TrimSpace(appToken)
	if appToken == "" {
		return nil, fmt.Errorf("x-amzn-alexa-app token is required")
	}

	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Session{
		cookie:    cookie,
		csrf:      csrf,
		appToken:  appToken,
		userAgent: userAgent,
		language:  defaultAcceptLanguage,
	}, nil
}

// CSRFFromCookie pulls the csrf token out of a captured Cookie header.
// Cookie headers carry plain name=value pairs, so splitting on
// semicolons is enough; the first csrf pair wins.
func CSRFFromCookie(cookie string) (string, error) {
	cookie = strings.Trim(strings.TrimSpace(cookie), ";")
	for _, pair := range strings.Split(cookie, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(name) != "csrf" {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return "", fmt.Errorf("cookie csrf pair is empty")
		}
		return value, nil
	}
	return "", fmt.Errorf("cookie has no csrf pair; copy the complete Cookie header from the capture")
}

func (s *Session) applyBase(req *http.Request) {
	req.Header.Set("Cookie", s.cookie)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", s.language)
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("x-amzn-alexa-app", s.appToken)
}
