package services

import (
	"fmt"
	"strings"

	"github.com/velora-app/velora-backend/internal/platform/logger"
)

// Localizer resolves user-facing notification strings. Unknown locales
// fall back to English; unknown keys return the key itself so a missing
// translation never blanks a notification.
type Localizer interface {
	T(locale, key string, args ...interface{}) string
}

type localizer struct {
	log     *logger.Logger
	catalog map[string]map[string]string
}

func NewLocalizer(log *logger.Logger) Localizer {
	return &localizer{
		log: log.With("service", "Localizer"),
		catalog: map[string]map[string]string{
			"en": {
				"welcome.message":      "Welcome to Velora! Complete your profile to start meeting people nearby.",
				"notify.like_received": "Someone liked you",
				"notify.match_new":     "You matched with %s",
				"notify.message_new":   "New message from %s",
				"notify.call_missed":   "Missed call from %s",
				"notify.call_ring":     "%s is calling you",
			},
			"de": {
				"welcome.message":      "Willkommen bei Velora! Vervollstaendige dein Profil, um Leute in deiner Naehe kennenzulernen.",
				"notify.like_received": "Jemand hat dich geliked",
				"notify.match_new":     "Du hast ein Match mit %s",
				"notify.message_new":   "Neue Nachricht von %s",
				"notify.call_missed":   "Verpasster Anruf von %s",
				"notify.call_ring":     "%s ruft dich an",
			},
			"fr": {
				"welcome.message":      "Bienvenue sur Velora ! Completez votre profil pour rencontrer des gens pres de chez vous.",
				"notify.like_received": "Quelqu'un vous a like",
				"notify.match_new":     "Vous avez un match avec %s",
				"notify.message_new":   "Nouveau message de %s",
				"notify.call_missed":   "Appel manque de %s",
				"notify.call_ring":     "%s vous appelle",
			},
		},
	}
}

func (l *localizer) T(locale, key string, args ...interface{}) string {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	table, ok := l.catalog[lang]
	if !ok {
		table = l.catalog["en"]
	}
	tmpl, ok := table[key]
	if !ok {
		tmpl, ok = l.catalog["en"][key]
		if !ok {
			l.log.Warn("missing localization key", "key", key, "locale", locale)
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
