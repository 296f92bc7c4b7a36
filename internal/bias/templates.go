package bias

import (
	"strings"

	"github.com/talgya/hearsay/internal/events"
)

// Interpretation templates. Placeholders: {first} is the first actor,
// {actors} all actors, {ally} the involved ally, {place} the location label.
var neutralTemplates = [events.NumEventTypes]string{
	events.EventViolence:     "{actors} got into a fight at {place}.",
	events.EventDeath:        "{first} died at {place}.",
	events.EventTheft:        "{first} stole something at {place}.",
	events.EventDiscovery:    "{first} found something at {place}.",
	events.EventConversation: "{actors} talked at {place}.",
	events.EventTrade:        "{actors} made a deal at {place}.",
	events.EventKindness:     "{first} helped someone at {place}.",
	events.EventArrival:      "{first} arrived at {place}.",
}

var traitTemplates = [events.NumEventTypes]map[Trait]string{
	events.EventViolence: {
		Fearful:  "{first} attacked someone at {place}. Nobody is safe there anymore.",
		Paranoid: "That fight at {place} was no accident; {first} was sent to start it.",
		Cynical:  "Another brawl at {place}. {first} was always going to hurt someone.",
		Curious:  "What made {first} lash out like that at {place}?",
		Loyal:    "{ally} was only defending themselves at {place}.",
	},
	events.EventDeath: {
		Fearful:  "{first} was killed at {place}. Death walks those streets now.",
		Paranoid: "{first} didn't just die at {place}. Someone wanted them gone.",
		Cynical:  "{first} is dead at {place}. People die and nobody learns.",
		Curious:  "How exactly did {first} die at {place}? Something doesn't fit.",
		Greedy:   "{first} died at {place}. I wonder who inherits.",
		Loyal:    "{ally} didn't deserve what happened at {place}.",
	},
	events.EventTheft: {
		Fearful:  "A thief is loose at {place}. {first} could come for my things next.",
		Paranoid: "{first} stole at {place}, and I bet the guards were paid to look away.",
		Cynical:  "{first} stole at {place}. Everyone steals; {first} just got seen.",
		Curious:  "{first} took something at {place}. What was so valuable?",
		Greedy:   "{first} made off with valuables from {place}. Where did they stash it?",
		Loyal:    "{ally} only borrowed something at {place}. They'll give it back.",
	},
	events.EventDiscovery: {
		Fearful:  "{first} dug up something at {place} that should have stayed buried.",
		Paranoid: "{first} claims to have found something at {place}. Convenient.",
		Cynical:  "{first} found something at {place}. Probably worthless.",
		Curious:  "{first} discovered something at {place}! I need to see it.",
		Greedy:   "{first} found treasure at {place}. There could be more.",
		Loyal:    "{ally} made a real discovery at {place}.",
	},
	events.EventConversation: {
		Paranoid: "{actors} were whispering at {place}. They're planning something.",
		Cynical:  "{actors} were trading empty words at {place}.",
		Curious:  "I wonder what {actors} were discussing at {place}.",
		Loyal:    "{ally} had a good talk at {place}.",
	},
	events.EventTrade: {
		Paranoid: "That deal at {place} between {actors} smelled crooked.",
		Cynical:  "{first} got swindled at {place}, like everyone does.",
		Greedy:   "Real money changed hands at {place}. {first} is doing well.",
		Loyal:    "{ally} struck a fair bargain at {place}.",
	},
	events.EventKindness: {
		Fearful:  "{first} helped someone at {place}. Perhaps there is someone to turn to after all.",
		Paranoid: "{first} helped someone at {place}. Nobody is that kind for free.",
		Cynical:  "{first} played the saint at {place}. It won't last.",
		Curious:  "Why did {first} go out of their way at {place}?",
		Loyal:    "{ally} did a fine thing at {place}, as always.",
	},
	events.EventArrival: {
		Fearful:  "A stranger, {first}, turned up at {place}. I don't like it.",
		Paranoid: "{first} showed up at {place}. Nobody comes here without a reason.",
		Cynical:  "Another drifter at {place}. {first} won't last.",
		Curious:  "Who is {first}, and what brings them to {place}?",
		Greedy:   "{first} arrived at {place}. Newcomers have coin to spend.",
		Loyal:    "{ally} is back at {place}.",
	},
}

var conspiracyPrefixes = []string{
	"Something doesn't add up. ",
	"Mark my words, there's more to this. ",
	"I have my suspicions. ",
}

// intensifiers are applied in order by dramatic retellers.
var intensifiers = [][2]string{
	{"got into a fight", "nearly killed each other"},
	{"attacked", "savagely attacked"},
	{"stole", "brazenly robbed"},
	{"died", "met a horrible end"},
	{"found", "unearthed"},
	{"talked", "argued heatedly"},
	{"helped", "saved"},
	{"arrived", "stormed in"},
}

// softeners reframe what an ally did, keyed by the verb that follows the ally.
var softeners = [][2]string{
	{"got into a fight", "was dragged into a fight"},
	{"attacked", "stood up to"},
	{"stole", "borrowed"},
	{"killed", "defended themselves against"},
	{"lied", "misspoke"},
	{"cheated", "drove a hard bargain"},
}

func actorList(actors []string) string {
	switch len(actors) {
	case 0:
		return "someone"
	case 1:
		return actors[0]
	default:
		return strings.Join(actors[:len(actors)-1], ", ") + " and " + actors[len(actors)-1]
	}
}

func fill(tmpl string, ev *events.WorldEvent, ally string) string {
	first := "someone"
	if len(ev.Actors) > 0 {
		first = ev.Actors[0]
	}
	r := strings.NewReplacer(
		"{first}", first,
		"{actors}", actorList(ev.Actors),
		"{ally}", ally,
		"{place}", ev.Location.Label(),
	)
	return r.Replace(tmpl)
}
