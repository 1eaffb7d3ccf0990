package operations

import (
	"context"

	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/settings"
)

// ConnectEndor builds an authenticated Endor Labs client from settings.
func ConnectEndor(ctx context.Context, config *settings.Settings) (*cloud.Endor, error) {
	if err := config.RequireCredentials(); err != nil {
		return nil, err
	}
	client, err := cloud.NewClient(config.ApiUrl)
	if err != nil {
		return nil, err
	}
	client = client.WithTimeout(config.RequestTimeout)
	if common.TraceFlag() {
		client = client.WithTracing()
	}
	endor := cloud.NewEndor(client, config.Namespace)
	if err := endor.Authenticate(ctx, config.ApiKey, config.ApiSecret); err != nil {
		return nil, err
	}
	return endor, nil
}
