package app

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/talkincode/shopcart/config"
	"go.uber.org/zap"
)

// runtimeSettings is the subset of the configuration that can change while the
// session is open.
type runtimeSettings struct {
	Pricing   config.PricingConfig   `yaml:"pricing"`
	Loyalty   config.LoyaltyConfig   `yaml:"loyalty"`
	Promotion config.PromotionConfig `yaml:"promotion"`
}

// SaveSettings applies a partial update such as
//
//	{"pricing": {"bulk_rate": "0.3"}, "promotion": {"flash_interval": "45s"}}
//
// Keys follow the YAML names. Maps and lists given in the update replace the
// current value. Nothing changes if any value is invalid. A promotion update
// rebuilds the scheduler and starts it when promotions are enabled and
// background jobs are running.
func (a *Application) SaveSettings(settings map[string]interface{}) error {
	next := runtimeSettings{
		Pricing:   a.appConfig.Pricing,
		Loyalty:   a.appConfig.Loyalty,
		Promotion: a.appConfig.Promotion,
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &next,
	})
	if err != nil {
		return errors.Wrap(err, "settings decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return errors.Wrapf(ErrInvalidSetting, "%v", err)
	}

	prules, err := pricingRules(next.Pricing)
	if err != nil {
		return err
	}
	if err := validatePromotion(next.Promotion); err != nil {
		return err
	}

	a.appConfig.Pricing = next.Pricing
	a.appConfig.Loyalty = next.Loyalty
	a.session.SetRules(prules, loyaltyRules(next.Loyalty, prules.SpecialDay))

	if _, ok := settings["promotion"]; ok {
		a.appConfig.Promotion = next.Promotion
		if err := a.restartJob(); err != nil {
			return err
		}
	}
	zap.L().Info("settings updated", zap.Strings("keys", keys(settings)))
	return nil
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
