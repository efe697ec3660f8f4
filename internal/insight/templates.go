package insight

import "github.com/danielpatrickdp/adaptive-profile/internal/layer"

// Cut points on a layer's value. Values in between make no claim.
const (
	HighCut = 0.65
	LowCut  = 0.35

	// HighBandConfidence is the layer confidence above which a card is High.
	HighBandConfidence = 0.8
)

type template struct {
	high string
	low  string
}

var templates = [layer.Count + 1]template{
	1: {
		high: "You describe yourself richly and with conviction; your self-image seems well articulated.",
		low:  "You describe yourself sparingly; you may define yourself more by action than by words.",
	},
	2: {
		high: "You appear to stay even-keeled when circumstances shift.",
		low:  "Change seems to register strongly with you before you settle.",
	},
	3: {
		high: "You seem to draw energy from activity and other people.",
		low:  "You seem to recharge best in quiet, on your own terms.",
	},
	4: {
		high: "You tend to commit to decisions quickly once the key facts are in.",
		low:  "You tend to deliberate and keep options open before committing.",
	},
	5: {
		high: "You lean toward saying things plainly, even when it is uncomfortable.",
		low:  "You lean toward tact, choosing your moment to raise hard points.",
	},
	6: {
		high: "Fairness appears to outrank winning for you.",
		low:  "Outcomes appear to weigh heavily in how you judge a situation.",
	},
	7: {
		high: "Visible recognition seems to be a strong motivator for you.",
		low:  "You seem driven more by private meaning than by recognition.",
	},
	8: {
		high: "Under pressure you appear to narrow in on what you can control.",
		low:  "Pressure seems to spread your attention; recovery time may matter to you.",
	},
	9: {
		high: "You seem to extend trust readily to new people.",
		low:  "You seem to let trust build gradually before opening up.",
	},
	10: {
		high: "A clear plan for the day looks like your natural operating mode.",
		low:  "You appear to work in flexible bursts rather than to a fixed plan.",
	},
	11: {
		high: "You seem to learn for its own sake, well beyond immediate need.",
		low:  "You appear to learn most when it serves a concrete purpose.",
	},
	12: {
		high: "You tend to raise conflict early rather than let it build.",
		low:  "You tend to give conflict room before addressing it.",
	},
	13: {
		high: "You appear to hold a clear picture of where you are heading.",
		low:  "Your direction seems open; you may be exploring before committing.",
	},
	14: {
		high: "You may tend to take on more than is sustainable.",
		low:  "You appear to guard your capacity carefully.",
	},
	15: {
		high: "Who you are seems consistent across the roles you play.",
		low:  "Different settings may be drawing out quite different sides of you.",
	},
}

// defaultText is used when no layer supports a specific claim.
const defaultText = "We are still getting to know you. A few more answers will let us say something specific."

// defaultRefs are the earliest layers, referenced by the default card.
var defaultRefs = []layer.ID{1, 2, 3}
