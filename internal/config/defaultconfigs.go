package config

var DefaultConfig Config
var DefaultTheme Theme

func init() {
	DefaultTheme = Theme{
		ShowLabels: true,
		Colors: ConfigColors{
			Concealed: "245",
			Flagged:   "11",
			Number:    "12",
			Mine:      "9",
			Detonated: "196",
			Normal:    "10",
			Warning:   "214",
			Danger:    "9",
			Error:     "9",
		},
		Symbols: ConfigSymbols{
			Concealed: "■",
			Flagged:   "⚑",
			Empty:     "·",
			Mine:      "*",
			Detonated: "✹",
		},
	}

	DefaultConfig = Config{
		Game: GameConfig{
			Size:      8,
			Mines:     16,
			TimeLimit: 180,
		},
		Theme: DefaultTheme,
		Log: LogConfig{
			Level: "info",
		},
	}
}
