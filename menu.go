package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

const menuText = `
1) Estimate size
2) Download all
3) Verify integrity
4) Exit
> `

// runMenu offers the operations interactively until the user exits or input
// ends. A failed operation is reported and the menu is offered again.
func runMenu(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, menuText)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		var action appAction
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "1":
			action = (*app).estimate
		case "2":
			action = (*app).downloadAll
		case "3":
			action = (*app).verify
		case "4", "q", "exit":
			return nil
		case "":
			continue
		default:
			fmt.Fprintln(out, "unknown choice")
			continue
		}

		if err := action(a, ctx, out); err != nil {
			log.WithError(err).Error("operation failed")
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
