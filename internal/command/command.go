// Package command turns bot command text into job actions.
package command

import (
	"regexp"
	"strings"

	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/workday"
)

type Action struct {
	Kind    domain.Action
	OffTime string
	Workday string
}

var (
	simple = []struct {
		re   *regexp.Regexp
		kind domain.Action
	}{
		{regexp.MustCompile(`(?i)/jungHelp`), domain.ActionJungHelp},
		{regexp.MustCompile(`(?i)/topTen`), domain.ActionTopTen},
		{regexp.MustCompile(`(?i)/topDiver`), domain.ActionTopDiver},
		{regexp.MustCompile(`(?i)/allJung`), domain.ActionAllJung},
		{regexp.MustCompile(`(?i)/enableAllJung`), domain.ActionEnableAll},
		{regexp.MustCompile(`(?i)/disableAllJung`), domain.ActionDisableAll},
	}

	setOffRe  = regexp.MustCompile(`(?i)/setOffFromWorkTimeUTC`)
	offTimeRe = regexp.MustCompile(`^([0-1]\d|2[0-3])(00|15|30|45)$`)
	daysRe    = regexp.MustCompile(`^(MON|TUE|WED|THU|FRI|SAT|SUN)(,(MON|TUE|WED|THU|FRI|SAT|SUN)){0,6}$`)
)

// Parse returns every action named in text, in a fixed order. A message
// may carry more than one command.
func Parse(text string) []Action {
	var out []Action
	for _, s := range simple {
		if s.re.MatchString(text) {
			out = append(out, Action{Kind: s.kind})
		}
	}
	if setOffRe.MatchString(text) {
		out = append(out, parseSetOff(text))
	}
	return out
}

func parseSetOff(text string) Action {
	bad := Action{Kind: domain.ActionBadOffFormat}
	params := strings.Fields(text)
	if len(params) != 3 {
		return bad
	}
	offTime, rawDays := params[1], params[2]
	if !offTimeRe.MatchString(offTime) || !daysRe.MatchString(rawDays) {
		return bad
	}
	a := Action{
		Kind:    domain.ActionSetOffTime,
		OffTime: offTime,
		Workday: dedupeDays(rawDays),
	}
	if _, err := a.Mask(); err != nil {
		return bad
	}
	return a
}

// dedupeDays keeps the first occurrence of each day, so MON,MON is MON.
func dedupeDays(s string) string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range strings.Split(s, ",") {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return strings.Join(out, ",")
}

// Mask converts the normalised workday list of a set-off action.
func (a Action) Mask() (workday.Mask, error) { return workday.Parse(a.Workday) }
