package styles

// Theme names match the settings theme modes.
const (
	DarkTheme  = "dark"
	LightTheme = "light"
)

// NewDarkTheme creates the default dark theme
func NewDarkTheme() *Theme {
	return &Theme{
		Name:   DarkTheme,
		IsDark: true,

		// Brand colors - MetaNet blues with a gold accent
		Primary:   ParseHex("#3b82f6"), // Blue 500
		Secondary: ParseHex("#a78bfa"), // Violet 400
		Tertiary:  ParseHex("#22d3ee"), // Cyan 400
		Accent:    ParseHex("#fbbf24"), // Amber 400

		BgBase:      ParseHex("#0f172a"), // Slate 900
		BgSubtle:    ParseHex("#1e293b"), // Slate 800
		BgOverlay:   ParseHex("#334155"), // Slate 700
		BgHighlight: ParseHex("#475569"), // Slate 600

		FgBase:     ParseHex("#f8fafc"), // Slate 50
		FgMuted:    ParseHex("#cbd5e1"), // Slate 300
		FgSubtle:   ParseHex("#94a3b8"), // Slate 400
		FgInverted: ParseHex("#0f172a"),
		FgSelected: ParseHex("#ffffff"),

		Border:      ParseHex("#334155"),
		BorderFocus: ParseHex("#60a5fa"),

		Success: ParseHex("#34d399"),
		Error:   ParseHex("#f87171"),
		Warning: ParseHex("#fbbf24"),
		Info:    ParseHex("#60a5fa"),

		ChipApp:          ParseHex("#93c5fd"),
		ChipBasket:       ParseHex("#86efac"),
		ChipProtocol:     ParseHex("#c4b5fd"),
		ChipCertificate:  ParseHex("#fcd34d"),
		ChipCounterparty: ParseHex("#f9a8d4"),
	}
}

// NewLightTheme creates the light theme
func NewLightTheme() *Theme {
	return &Theme{
		Name:   LightTheme,
		IsDark: false,

		Primary:   ParseHex("#1d4ed8"), // Blue 700
		Secondary: ParseHex("#6d28d9"), // Violet 700
		Tertiary:  ParseHex("#0e7490"), // Cyan 700
		Accent:    ParseHex("#b45309"), // Amber 700

		BgBase:      ParseHex("#f8fafc"),
		BgSubtle:    ParseHex("#e2e8f0"), // Slate 200
		BgOverlay:   ParseHex("#cbd5e1"),
		BgHighlight: ParseHex("#bfdbfe"), // Blue 200

		FgBase:     ParseHex("#0f172a"),
		FgMuted:    ParseHex("#334155"),
		FgSubtle:   ParseHex("#64748b"),
		FgInverted: ParseHex("#f8fafc"),
		FgSelected: ParseHex("#020617"),

		Border:      ParseHex("#cbd5e1"),
		BorderFocus: ParseHex("#1d4ed8"),

		Success: ParseHex("#047857"),
		Error:   ParseHex("#b91c1c"),
		Warning: ParseHex("#b45309"),
		Info:    ParseHex("#1d4ed8"),

		ChipApp:          ParseHex("#1e40af"),
		ChipBasket:       ParseHex("#166534"),
		ChipProtocol:     ParseHex("#5b21b6"),
		ChipCertificate:  ParseHex("#92400e"),
		ChipCounterparty: ParseHex("#9d174d"),
	}
}
