package domain

import "strings"

// NavigationDirection - шаг по истории версий
type NavigationDirection string

const (
	NavigatePrev NavigationDirection = "prev"
	NavigateNext NavigationDirection = "next"
)

// NavigationResult - версия, на которую перешли, и признак того, что она последняя
type NavigationResult struct {
	Version          DocumentVersion
	IsCurrentVersion bool
}

func ParseNavigationDirection(s string) (NavigationDirection, error) {
	switch NavigationDirection(strings.ToLower(strings.TrimSpace(s))) {
	case NavigatePrev:
		return NavigatePrev, nil
	case NavigateNext:
		return NavigateNext, nil
	}
	return "", ErrInvalidDirection
}
