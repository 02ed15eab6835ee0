package game

import (
	"strings"

	"clipit_tycoon/internal/random"
)

var titleActions = []string{
	"REACTS TO", "GETS SCARED BY", "LOSES IT AT", "CAN'T BELIEVE",
	"GOES CRAZY OVER", "SHOCKED BY", "FREAKS OUT AT", "DESTROYS",
}

var titleSubjects = []string{
	"THIS INSANE MOMENT", "VIRAL VIDEO", "CRAZY DONATION", "EPIC FAIL",
	"FUNNY CLIP", "WEIRD CONTENT", "AMAZING PLAY", "SHOCKING NEWS",
	"HILARIOUS MEME", "UNEXPECTED TWIST",
}

// ClipTitle builds "<NAME> <ACTION> <SUBJECT>!"
func ClipTitle(src random.Source, streamerName string) string {
	action := random.Pick(src, titleActions)
	subject := random.Pick(src, titleSubjects)
	return strings.ToUpper(streamerName) + " " + action + " " + subject + "!"
}
