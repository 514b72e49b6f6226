package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/ruteri/ipfs-vhost-gateway/api/clients"
	"github.com/urfave/cli/v2"
)

var serverAddrFlag = &cli.StringFlag{
	Name:  "server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "vhost gateway control API address",
}

func main() {
	app := &cli.App{
		Name:  "vhostctl",
		Usage: "Manage vhost bindings on a running gateway",
		Flags: []cli.Flag{
			serverAddrFlag,
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all vhost bindings",
				Action: func(cCtx *cli.Context) error {
					entries, err := newClient(cCtx).List()
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "NAME\tCID")
					for _, e := range entries {
						fmt.Fprintf(w, "%s\t%s\n", e.Name, e.CID)
					}
					return w.Flush()
				},
			},
			{
				Name:      "get",
				Usage:     "show a single vhost binding",
				ArgsUsage: "<name>",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("usage: get <name>")
					}
					entry, err := newClient(cCtx).Get(cCtx.Args().Get(0))
					if err != nil {
						return err
					}
					fmt.Printf("%s\t%s\n", entry.Name, entry.CID)
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "create or overwrite a vhost binding",
				ArgsUsage: "<name> <cid>",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 2 {
						return errors.New("usage: add <name> <cid>")
					}
					return newClient(cCtx).Create(cCtx.Args().Get(0), cCtx.Args().Get(1))
				},
			},
			{
				Name:      "update",
				Usage:     "re-point an existing vhost at a new CID",
				ArgsUsage: "<name> <cid>",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 2 {
						return errors.New("usage: update <name> <cid>")
					}
					return newClient(cCtx).Update(cCtx.Args().Get(0), cCtx.Args().Get(1))
				},
			},
			{
				Name:      "rm",
				Usage:     "remove a vhost binding",
				ArgsUsage: "<name>",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return errors.New("usage: rm <name>")
					}
					return newClient(cCtx).Delete(cCtx.Args().Get(0))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) *clients.VhostClient {
	return &clients.VhostClient{ServerAddr: cCtx.String(serverAddrFlag.Name)}
}
