package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sabbir-tanvir/storefront/backend"
)

func printProducts(w io.Writer, items []backend.Product, fetchedAt, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, price(p.Price), humanize.Comma(int64(p.Stock)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s, fetched %s\n", plural(len(items), "product"), humanize.RelTime(fetchedAt, now, "ago", "from now"))
	return err
}

func printShops(w io.Writer, page backend.Page[backend.Shop], n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS")
	for _, s := range page.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Name, s.Address)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	footer := fmt.Sprintf("page %d, %s of %s", n, plural(len(page.Results), "shop"), humanize.Comma(int64(page.Count)))
	if page.Next != "" {
		footer += " (more with --page " + strconv.Itoa(n+1) + ")"
	}
	_, err := fmt.Fprintln(w, footer)
	return err
}

// price renders an amount with thousands separators, leaving unparseable
// values as the backend sent them.
func price(a backend.Amount) string {
	if a == "" {
		return "-"
	}
	f, err := strconv.ParseFloat(string(a), 64)
	if err != nil {
		return string(a)
	}
	return humanize.CommafWithDigits(f, 2)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
