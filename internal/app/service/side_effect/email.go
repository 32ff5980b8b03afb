package side_effect

import (
	"context"

	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/pkg/logctx"
)

// emailSource is one step of the recipient fallback chain. Sources are only
// consulted when every earlier one came back empty.
type emailSource struct {
	name    string
	resolve func(ctx context.Context, p *models.Payment) (string, error)
}

func (d *Dispatcher) emailSources() []emailSource {
	return []emailSource{
		{name: "stored", resolve: func(_ context.Context, p *models.Payment) (string, error) {
			return p.CustomerEmail, nil
		}},
		{name: "directory", resolve: func(ctx context.Context, p *models.Payment) (string, error) {
			u, err := d.client.GetUser(ctx, p.UserID, "")
			if err != nil {
				return "", err
			}
			return u.Email, nil
		}},
		{name: "placeholder", resolve: func(context.Context, *models.Payment) (string, error) {
			return d.cfg.CustomerDefaults.Email, nil
		}},
	}
}

func (d *Dispatcher) resolveEmail(ctx context.Context, p *models.Payment) string {
	log := logctx.FromCtx(ctx, d.log)
	for _, src := range d.emailSources() {
		email, err := src.resolve(ctx, p)
		if err != nil {
			log.Warnw("confirmation_email_source_failed", "source", src.name, "payment_id", p.ID, "err", err)
			continue
		}
		if email != "" {
			return email
		}
	}
	return ""
}
