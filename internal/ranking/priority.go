package ranking

import "strings"

// PriorityDomains lists well-known music sites, playable experiences first.
// The position in the list sets the size of the site bonus.
var PriorityDomains = []string{
	"youtube.com", "youtu.be",
	"open.spotify.com", "music.apple.com",
	"bandcamp.com", "soundcloud.com", "tidal.com", "deezer.com",
	"rateyourmusic.com", "allmusic.com", "pitchfork.com",
}

// priorityStep is the bonus lost per position in PriorityDomains.
const priorityStep = 0.1

// DomainBonus returns weight × (1 − 0.1 × index) for the first priority domain found in text.
// The bonus is floored at zero, so positions from 10 onward add nothing.
func DomainBonus(text string, weight float64) float64 {
	for i, d := range PriorityDomains {
		if strings.Contains(text, d) {
			return max(weight*(1-priorityStep*float64(i)), 0)
		}
	}
	return 0
}
