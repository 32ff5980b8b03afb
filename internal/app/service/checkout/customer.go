package checkout

import (
	"context"
	"strings"

	"github.com/fatflowers/checkout/internal/platform/collaborator"
	"github.com/fatflowers/checkout/internal/platform/token"
	"github.com/fatflowers/checkout/pkg/logctx"
)

type customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Street    string
	City      string
	Country   string
	// RealEmail is false when Email is the configured placeholder.
	RealEmail bool
}

func splitHolderName(holder string) (first, last string) {
	parts := strings.Fields(holder)
	if len(parts) == 0 {
		return "", "N/A"
	}
	if len(parts) == 1 {
		return parts[0], "N/A"
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// resolveCustomer builds the gateway customer block. Token and directory
// failures degrade to defaults and never fail the checkout.
func (s *Service) resolveCustomer(ctx context.Context, req *Request) customer {
	log := logctx.FromCtx(ctx, s.log)
	defaults := s.cfg.CustomerDefaults

	first, last := splitHolderName(req.CardDetails.CardHolderName)
	c := customer{
		FirstName: first,
		LastName:  last,
		Phone:     defaults.Phone,
		Street:    defaults.Street,
		City:      defaults.City,
		Country:   defaults.Country,
	}

	if claims, err := token.DecodeUnverified(req.Token); err != nil {
		log.Warnw("checkout_token_decode_failed", "err", err)
	} else if claims.Email != "" {
		c.Email, c.RealEmail = claims.Email, true
	}

	if u, err := s.users.GetUser(ctx, req.UserID, req.Token); err != nil {
		log.Warnw("checkout_user_lookup_failed", "user_id", req.UserID, "err", err)
	} else {
		mergeProfile(&c, u)
	}

	if c.Email == "" {
		c.Email = defaults.Email
	}
	return c
}

func mergeProfile(c *customer, u *collaborator.UserProfile) {
	if u == nil {
		return
	}
	if u.FirstName != "" {
		c.FirstName = u.FirstName
	}
	if u.LastName != "" {
		c.LastName = u.LastName
	}
	if u.Phone != "" {
		c.Phone = u.Phone
	}
	if a := u.Address; a != nil {
		if a.Street != "" {
			c.Street = a.Street
		}
		if a.City != "" {
			c.City = a.City
		}
		if a.Country != "" {
			c.Country = a.Country
		}
	}
	// token email wins over the directory
	if !c.RealEmail && u.Email != "" {
		c.Email, c.RealEmail = u.Email, true
	}
}
