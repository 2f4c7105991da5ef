package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/app"
	"github.com/talkincode/shopcart/internal/cart"
	"go.uber.org/zap"
)

var errQuit = errors.New("quit")

const usage = `commands:
  add <id> [n]        add n units (default 1)
  set <id> <qty>      set quantity, 0 removes the line
  inc <id> | dec <id> change quantity by one
  rm <id>             remove the line
  clear               empty the cart
  show                print catalog and cart
  flash | suggest     run a promotion now
  setting <key> <v>   change a rule, e.g. setting pricing.bulk_rate 0.3
  quit`

type console struct {
	app *app.Application
	out *printer
}

func newConsole(a *app.Application, out *printer) *console {
	return &console{app: a, out: out}
}

// readLines feeds r line by line until EOF. The reader goroutine is not
// stopped by cancellation since stdin cannot be interrupted.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			zap.L().Error("read input", zap.Error(err))
		}
	}()
	return ch
}

// run executes lines until quit, end of input or cancellation.
func (c *console) run(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			if err := c.exec(line); err != nil {
				return err
			}
		}
	}
}

func (c *console) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	s := c.app.Session()
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "add":
		n := 1
		if len(args) > 1 {
			v, err := cast.ToIntE(args[1])
			if err != nil || v < 1 {
				c.out.fail("invalid count: " + args[1])
				return nil
			}
			n = v
		}
		for i := 0; i < n; i++ {
			if !c.report(s.AddItem(arg(args, 0))) {
				break
			}
		}
	case "set":
		qty, err := cast.ToIntE(arg(args, 1))
		if err != nil {
			c.out.fail("invalid quantity: " + arg(args, 1))
			return nil
		}
		c.report(s.UpdateQuantity(arg(args, 0), qty))
	case "inc":
		c.report(s.ChangeQuantity(arg(args, 0), 1))
	case "dec":
		c.report(s.ChangeQuantity(arg(args, 0), -1))
	case "rm":
		c.report(s.RemoveItem(arg(args, 0)))
	case "clear":
		s.Clear()
	case "show":
		c.out.catalog(s.Catalog().Products())
		c.out.summary(s.Summary())
	case "flash":
		if _, ok := c.app.Scheduler().TriggerFlashSale(); !ok {
			c.out.info("No product is eligible for a flash sale")
		}
	case "suggest":
		if _, ok := c.app.Scheduler().TriggerSuggestedSale(); !ok {
			c.out.info("Nothing to suggest")
		}
	case "setting":
		if len(args) != 2 {
			c.out.fail("usage: setting <section.key> <value>")
			return nil
		}
		if err := c.app.SaveSettings(settingFromKey(args[0], args[1], c.app.Config())); err != nil {
			c.out.fail(err.Error())
			return nil
		}
		c.out.info(fmt.Sprintf("%s = %s", args[0], args[1]))
	case "help":
		c.out.info(usage)
	case "quit", "exit":
		return errQuit
	default:
		c.out.fail("unknown command: " + cmd)
	}
	return nil
}

// report surfaces a failed result and reports whether it succeeded.
func (c *console) report(r cart.Result) bool {
	if !r.Success {
		c.out.fail(r.Message)
	}
	return r.Success
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// settingFromKey expands "pricing.bulk_rate" into nested maps. A single
// "pricing.item_discounts.<id>" key is merged into the current table, since a
// map in an update replaces the whole table.
func settingFromKey(key string, value interface{}, cfg *config.AppConfig) map[string]interface{} {
	parts := strings.Split(key, ".")
	root := map[string]interface{}{}
	m := root
	for _, p := range parts[:len(parts)-1] {
		next := map[string]interface{}{}
		m[p] = next
		m = next
	}
	if cfg != nil && len(parts) == 3 && parts[0] == "pricing" && parts[1] == "item_discounts" {
		for id, rate := range cfg.Pricing.ItemDiscounts {
			m[id] = rate
		}
	}
	m[parts[len(parts)-1]] = value
	return root
}
