// Package translate formats user-facing text for the bus8 tools in the
// locale of the running process.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the process locale cannot be determined.
const DEFAULT_LOCALE = "en-US"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("bus8: locale: %v", err)
	}

	SetLocale(locales...)
}

// SetLocale selects the best match of locales for later messages.
// With no locales, DEFAULT_LOCALE is used.
func SetLocale(locales ...string) language.Tag {
	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	tag := message.MatchLanguage(locales...)
	printer = message.NewPrinter(tag)

	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
