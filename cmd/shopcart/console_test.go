package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/app"
)

type output map[string]interface{}

func runConsole(t *testing.T, script string) ([]output, *app.Application) {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.FixedDate = "2024-10-14"
	cfg.Promotion.Enabled = false

	a := app.NewApplication(cfg)
	require.NoError(t, a.Init(cfg))
	t.Cleanup(a.Release)

	var buf bytes.Buffer
	out := newPrinter(&buf)
	require.NoError(t, out.attach(a.Session()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- out.run(ctx) }()

	err := newConsole(a, out).run(context.Background(), readLines(strings.NewReader(script)))
	assert.ErrorIs(t, err, errQuit)
	cancel()
	require.NoError(t, <-done)

	var outputs []output
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var o output
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &o))
		outputs = append(outputs, o)
	}
	return outputs, a
}

func last(outputs []output, typ string) output {
	for i := len(outputs) - 1; i >= 0; i-- {
		if outputs[i]["type"] == typ {
			return outputs[i]
		}
	}
	return nil
}

func TestConsoleAddAndSet(t *testing.T) {
	outputs, a := runConsole(t, "add p1 12\nset p1 11\ninc p1\nquit\n")

	cart := last(outputs, "cart")
	require.NotNil(t, cart)
	assert.Equal(t, "₩120,000", cart["subtotal"])
	assert.Equal(t, "₩108,000", cart["total"])
	assert.Equal(t, float64(12), cart["item_count"])
	assert.Equal(t, 12, a.Session().Cart().Quantity("p1"))
}

func TestConsoleReportsFailures(t *testing.T) {
	outputs, _ := runConsole(t, "add p4\nrm p1\nbogus\nadd\n")

	var msgs []string
	for _, o := range outputs {
		if o["type"] == "error" {
			msgs = append(msgs, o["message"].(string))
		}
	}
	assert.Equal(t, []string{
		"Insufficient stock",
		"Item not in cart",
		"unknown command: bogus",
		"No product selected",
	}, msgs)
}

func TestConsoleShowAndPromotion(t *testing.T) {
	outputs, a := runConsole(t, "add p2\nsuggest\nshow\n")

	notice := last(outputs, "suggested")
	require.NotNil(t, notice)
	assert.Equal(t, "How about Bug-free keyboard? Now ₩9,500", notice["message"])

	catalog := last(outputs, "catalog")
	require.NotNil(t, catalog)
	assert.Len(t, catalog["products"], 5)

	p, _ := a.Session().Catalog().FindByID("p1")
	assert.True(t, p.OnSuggestedSale)
}

func TestConsoleSetting(t *testing.T) {
	outputs, a := runConsole(t, "setting pricing.bulk_threshold 5\nsetting pricing.nope 1\n")

	assert.Equal(t, 5, a.Config().Pricing.BulkThreshold)
	assert.NotNil(t, last(outputs, "info"))
	assert.NotNil(t, last(outputs, "error"))
}

func TestSettingFromKey(t *testing.T) {
	assert.Equal(t, map[string]interface{}{
		"pricing": map[string]interface{}{"bulk_rate": "0.3"},
	}, settingFromKey("pricing.bulk_rate", "0.3", config.DefaultAppConfig()))

	cfg := config.DefaultAppConfig()
	cfg.Pricing.ItemDiscounts = map[string]float64{"p1": 0.10, "p2": 0.15}
	assert.Equal(t, map[string]interface{}{
		"pricing": map[string]interface{}{
			"item_discounts": map[string]interface{}{"p1": "0.5", "p2": 0.15},
		},
	}, settingFromKey("pricing.item_discounts.p1", "0.5", cfg))
}

func TestConsoleSettingKeepsOtherDiscounts(t *testing.T) {
	_, a := runConsole(t, "setting pricing.item_discounts.p1 0.5\n")

	discounts := a.Config().Pricing.ItemDiscounts
	assert.Len(t, discounts, 5)
	assert.Equal(t, 0.5, discounts["p1"])
	assert.Equal(t, 0.15, discounts["p2"])
}
