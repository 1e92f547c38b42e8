package report

import "fmt"

func chatPrefix(title string) string {
	return fmt.Sprintf("\n圍爐區: %s\n\n", title)
}

func Help(title string) string {
	return chatPrefix(title) + `冗員[jung2jyun4] Excess personnel in Cantonese

This bot is created for counting the number of message per participant in the group.

Commands:
/topTen  show top ten 冗員s
/topDiver  show top ten 潛水員s (潛得太深會搵唔到)
/allJung  show all 冗員s
/jungHelp  show help message

Admin Only:
/enableAllJung  enable /alljung command
/disableAllJung  disable /alljung command
/setOffFromWorkTimeUTC set offFromWork time in UTC

May your 冗 power powerful
`
}

const OffFromWork = "夠鐘收工~~"

func Cooldown(seconds int) string {
	return fmt.Sprintf("[Error] Commands will be available in %d seconds", seconds)
}

func AllJungDisabled(title string) string {
	return chatPrefix(title) + "AllJung command is disabled by the chat admins"
}

func AllJungToggled(title string, enabled bool) string {
	if enabled {
		return chatPrefix(title) + "Enabled AllJung command"
	}
	return chatPrefix(title) + "Disabled AllJung command"
}

func OffTimeUpdated(title, offTime, workday string) string {
	return chatPrefix(title) + fmt.Sprintf("Updated setOffFromWorkTime in UTC: %s %s", offTime, workday)
}

func BadOffFormat(title string) string {
	return chatPrefix(title) + `Error: Invalid format for setOffFromWorkTimeUTC

Format:
/setOffFromWorkTimeUTC {{ 0000-2345, 15 minutes interval }} {{ MON,TUE,WED,THU,FRI,SAT,SUN }}
E.g.:
/setOffFromWorkTimeUTC 1800 MON,TUE,WED,THU,FRI
`
}
