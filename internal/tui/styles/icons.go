package styles

const (
	// General icons
	CheckIcon   string = "✓"
	ErrorIcon   string = "✗"
	WarningIcon string = "⚠"
	InfoIcon    string = "ℹ"
	LoadingIcon string = "⟳"

	// Chip icons
	AppIcon          string = "◆"
	BasketIcon       string = "▤"
	ProtocolIcon     string = "⚙"
	CertificateIcon  string = "✪"
	CounterpartyIcon string = "☺"
	SpendingIcon     string = "$"

	// Selection
	CursorIcon    string = "▶"
	CheckedIcon   string = "[x]"
	UncheckedIcon string = "[ ]"

	// Tree
	BranchIcon     string = "├─"
	LastBranchIcon string = "└─"
)
