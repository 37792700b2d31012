package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/abgdnv/stocksync/internal/product"
	"github.com/abgdnv/stocksync/internal/repository"
	"github.com/abgdnv/stocksync/pkg/result"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
)

// errReported marks a failure that was already printed.
var errReported = errors.New("synchronization failed")

type commands struct {
	repo     *repository.Repository
	stdout   io.Writer
	stderr   io.Writer
	validate *validator.Validate
}

func (c *commands) dispatch(ctx context.Context, name string, args []string) error {
	c.validate = validator.New()
	switch name {
	case "list":
		return c.list(ctx, args)
	case "create":
		return c.create(ctx, args)
	case "update":
		return c.update(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

// list prints the cached products and, once synchronized, the products as the server has them.
func (c *commands) list(ctx context.Context, args []string) error {
	if err := c.parse("list", args, nil); err != nil {
		return err
	}

	phase := 0
	failed := false
	labels := []string{"cached", "synchronized"}
	result.Forward(ctx, c.repo.FetchAll(ctx), result.Callback[[]product.Product]{
		OnSuccess: func(products []product.Product) {
			c.printTable(labels[min(phase, len(labels)-1)], products)
			phase++
		},
		OnFailure: func(message string) {
			_, _ = fmt.Fprintf(c.stderr, "error: %s\n", message)
			failed = true
			phase++
		},
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if failed {
		return errReported
	}
	return nil
}

func (c *commands) create(ctx context.Context, args []string) error {
	var p product.Product
	if err := c.parse("create", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&p.Name, "name", "", "product name")
		fs.Int32Var(&p.Quantity, "quantity", 0, "quantity in stock")
	}); err != nil {
		return err
	}
	if err := c.check(p); err != nil {
		return err
	}

	created, err := c.repo.Create(ctx, p).Await(ctx).Unwrap()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.stdout, "created %s\n", created)
	return nil
}

func (c *commands) update(ctx context.Context, args []string) error {
	var p product.Product
	if err := c.parse("update", args, func(fs *pflag.FlagSet) {
		fs.Int64Var(&p.ID, "id", 0, "product id")
		fs.StringVar(&p.Name, "name", "", "product name")
		fs.Int32Var(&p.Quantity, "quantity", 0, "quantity in stock")
	}); err != nil {
		return err
	}
	if p.ID <= 0 {
		return fmt.Errorf("%w: --id must be a positive product id", errUsage)
	}
	if err := c.check(p); err != nil {
		return err
	}

	updated, err := c.repo.Update(ctx, p).Await(ctx).Unwrap()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.stdout, "updated %s\n", updated)
	return nil
}

func (c *commands) delete(ctx context.Context, args []string) error {
	var p product.Product
	if err := c.parse("delete", args, func(fs *pflag.FlagSet) {
		fs.Int64Var(&p.ID, "id", 0, "product id")
	}); err != nil {
		return err
	}
	if p.ID <= 0 {
		return fmt.Errorf("%w: --id must be a positive product id", errUsage)
	}

	if err := c.repo.Delete(ctx, p).Await(ctx).Err; err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.stdout, "deleted product %d\n", p.ID)
	return nil
}

func (c *commands) parse(name string, args []string, define func(fs *pflag.FlagSet)) error {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return nil
}

// check validates p before anything is sent to the server.
func (c *commands) check(p product.Product) error {
	if err := c.validate.Struct(p); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldErr := validationErrors[0]
			return fmt.Errorf("%w: %s failed on rule: %s", errUsage, fieldErr.Field(), fieldErr.Tag())
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func (c *commands) printTable(label string, products []product.Product) {
	_, _ = fmt.Fprintf(c.stdout, "%s (%d)\n", label, len(products))
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tQUANTITY")
	for _, p := range products {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\n", p.ID, p.Name, p.Quantity)
	}
	_ = tw.Flush()
}
