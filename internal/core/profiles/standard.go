package profiles

import "github.com/JonMunkholm/partspec/internal/core"

// Standard is the name of the part specification workbook layout.
const Standard = "standard"

func init() {
	core.Register(core.StandardLayout())
}
