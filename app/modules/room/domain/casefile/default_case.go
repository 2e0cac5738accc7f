package casefile

// Default returns the built-in manor case used by rooms that carry no custom
// case payload. The content is static; callers must treat it as read-only.
func Default() *Case {
	return &defaultCase
}

var defaultCase = Case{
	ID:    "case-1",
	Title: "The Dark Manor",
	Intro: "The wealthy businessman Vedat was found dead in his own manor. The doors were locked. The killer may still be inside.",
	Suspects: []Suspect{
		{
			ID:          "s1",
			Name:        "The Cook",
			Bio:         "Has worked in the house for years. Argued with Vedat about his wages.",
			DetailedBio: "Mehmet has run the kitchen for fifteen years. He once owned a famous restaurant but lost it to gambling debts. Vedat gave him work and never let him forget it. His recent request for a raise was refused.",
			Motive:      "Money and pride. Vedat humiliated him in front of the whole household.",
			Relationships: []Relationship{
				{TargetID: "s4", Type: "Romantic", Description: "Secretly involved with the maid."},
				{TargetID: "s3", Type: "Debtor", Description: "Borrowed money from the nephew."},
			},
			Dialogues: []Question{
				{ID: "q1", Text: "Where were you on the night of the murder?", Response: "In the kitchen, preparing dinner. The maid can vouch for me."},
				{ID: "q2", Text: "How did you get along with Vedat?", Response: "The boss was... tight-fisted. But not enough to kill him over! I only wanted what I was owed."},
				{ID: "q3", Text: "Could you have poisoned the food?", Response: "Never! I am a professional. Besides, I cooked the meal but I did not serve it.", UnlocksClueID: "c3"},
			},
		},
		{
			ID:          "s2",
			Name:        "The Gardener",
			Bio:         "Was in the garden at the time, but holds the key to the back door.",
			DetailedBio: "Quiet and withdrawn, with an old conviction for burglary. Vedat knew about it and threatened to report him to the police.",
			Motive:      "Blackmail. Vedat threatened to dig up his past.",
			Relationships: []Relationship{
				{TargetID: "s1", Type: "Rival", Description: "Constantly quarrels with the cook."},
			},
			Dialogues: []Question{
				{ID: "q1", Text: "Who did you see leave by the back door?", Response: "It was dark, I couldn't make them out. Tall, though. A man, maybe... or a tall woman."},
				{ID: "q2", Text: "Why didn't you go inside?", Response: "My business is the garden. Vedat didn't like seeing me indoors."},
			},
		},
		{
			ID:          "s3",
			Name:        "The Nephew",
			Bio:         "Sole heir to the estate. Known to have gambling debts.",
			DetailedBio: "Spoiled and work-shy, deep in debt to loan sharks. His uncle had recently cut off his allowance.",
			Motive:      "The inheritance. He needs money urgently to pay his debts.",
			Relationships: []Relationship{
				{TargetID: "s1", Type: "Creditor", Description: "Lent money to the cook at interest."},
			},
			Dialogues: []Question{
				{ID: "q1", Text: "How was your last meeting with your uncle?", Response: "An ordinary chat between uncle and nephew. I told him about my ventures."},
				{ID: "q2", Text: "Is it true you are in debt?", Response: "Everyone has debts, detective. That doesn't make me a killer. My uncle was going to help me."},
				{ID: "q3", Text: "Where were you that night?", Response: "In the city. With friends... you can call and ask them if you like."},
			},
		},
		{
			ID:          "s4",
			Name:        "The Maid",
			Bio:         "Found the body. Appears badly shaken.",
			DetailedBio: "A young woman the household gossips link to Vedat's unwanted attentions. She and the cook plan to marry in secret.",
			Motive:      "Self-protection. She was tired of Vedat's harassment.",
			Relationships: []Relationship{
				{TargetID: "s1", Type: "Romantic", Description: "Plans to marry the cook."},
			},
			Dialogues: []Question{
				{ID: "q1", Text: "How did you find the body?", Response: "I brought his morning coffee... I knocked, heard nothing, went in and... (she starts to cry)"},
				{ID: "q2", Text: "Did you serve the meal?", Response: "Yes, I carried the tray. But I spoke to no one on the way and never set it down."},
			},
		},
	},
	Clues: []Clue{
		{ID: "c1", Title: "Autopsy Report", Description: "The victim was poisoned. The poison was likely mixed into his meal.", VisibleTo: VisibleToA},
		{ID: "c2", Title: "Kitchen Log", Description: "The cook prepared dinner, but the maid served it.", VisibleTo: VisibleToB},
		{ID: "c3", Title: "Gardener's Statement", Description: "\"I saw someone leave by the back door but couldn't see their face. They were tall.\"", VisibleTo: VisibleToA, IsLocked: true},
		{
			ID: "c4", Title: "The Nephew's Phone",
			Description:    "The phone is locked behind a 4-digit code. The wallpaper reads \"My Birthday\".",
			VisibleTo:      VisibleToB,
			IsLocked:       true,
			LockedWithCode: "1990",
			Revealed:       "The unlocked phone shows messages from a loan shark: \"Last warning. Pay by Friday or we collect another way.\"",
		},
		{ID: "c5", Title: "Old Calendar", Description: "A calendar from 1990 hangs in the kitchen. One date is circled: \"the nephew's birth\".", VisibleTo: VisibleToA},
		{ID: "c6", Title: "Poison Bottle", Description: "Found in the garden shed. No fingerprints on it.", VisibleTo: VisibleToBoth},
		{ID: "c8", Title: "Muddy Footprint", Description: "A size-42 men's shoe print outside the back door.", VisibleTo: VisibleToBoth},
	},
	TimelineEvents: []TimelineEvent{
		{ID: "t1", Title: "Dinner Served", Time: "19:30", Description: "The maid served the meal.", CorrectOrder: 1},
		{ID: "t2", Title: "Power Cut", Time: "20:00", Description: "The lights went out across the house.", CorrectOrder: 2},
		{ID: "t3", Title: "Breaking Glass", Time: "20:15", Description: "A sound was heard from the garden.", CorrectOrder: 3},
		{ID: "t4", Title: "Body Discovered", Time: "08:00", Description: "The maid entered the room.", CorrectOrder: 4},
	},
	EvidenceCombinations: []EvidenceCombination{
		{
			ID: "ec1", ClueID1: "c1", ClueID2: "c6",
			ResultClue: Clue{
				ID: "c7", Title: "Poison Analysis",
				Description: "The residue in the bottle matches the poison in the victim's blood: arsenic, of a kind found in old agricultural pesticides.",
				VisibleTo:   VisibleToBoth, Type: "ANALYSIS",
			},
		},
		{
			ID: "ec2", ClueID1: "c3", ClueID2: "c8",
			ResultClue: Clue{
				ID: "c9", Title: "Statement Confirmed",
				Description: "The footprints sit exactly where the gardener said. Someone really did leave by the back door.",
				VisibleTo:   VisibleToBoth, Type: "ANALYSIS",
			},
		},
		{
			ID: "ec3", ClueID1: "c2", ClueID2: "c6",
			ResultClue: Clue{
				ID: "c10", Title: "Source of the Poison",
				Description: "The kitchen inventory lists no poison. It was brought in from outside, from the garden.",
				VisibleTo:   VisibleToBoth, Type: "ANALYSIS",
			},
		},
	},
	Solution: Solution{
		KillerID:   "s3",
		KillerName: "The Nephew",
		Motive:     "Poisoned his uncle to pay off his gambling debts.",
	},
}
