package cmd

import (
	"context"

	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/operations"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/settings"
	"github.com/joshyorko/depclean/wizard"
)

var (
	confirm   = wizard.ConfirmOverwrite
	askSecret = wizard.AskSecret
)

// connectEndor authenticates, asking for a missing API secret when there is
// a terminal to ask it from.
func connectEndor(ctx context.Context, config *settings.Settings) *cloud.Endor {
	if len(config.ApiSecret) == 0 && pretty.Interactive {
		secret, err := askSecret("Endor Labs API secret")
		pretty.Guard(err == nil, 1, "Could not read API secret: %v", err)
		config.ApiSecret = secret
	}
	endor, err := operations.ConnectEndor(ctx, config)
	pretty.Guard(err == nil, 3, "Could not connect to Endor Labs: %v", err)
	return endor
}
