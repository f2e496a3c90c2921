package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose invoices to AI assistants",
	Long:  `Serve the invoice history over the Model Context Protocol (MCP).`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server backed by the configured invoice store.

Tools:
  list_invoices   saved invoices, newest first, filtered by text or status
  invoice_totals  subtotal, tax, grand total and terbilang of one invoice
  compute_totals  totals for ad-hoc line items
  terbilang       an amount spelled out in Indonesian
  export_pdf      write a saved invoice as a paginated A4 PDF

Resources:
  finvoice://invoices             the history
  finvoice://invoices/{invoiceId} one invoice with items and totals

The server speaks JSON-RPC over stdio unless --port is given, in which
case it serves streamable HTTP on that port.

Examples:
  finvoice mcp serve
  finvoice mcp serve --port 8080

Desktop assistant configuration:
  {
    "mcpServers": {
      "finvoice": {
        "command": "/path/to/finvoice",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Invoices: invoiceService,
		Export:   exportService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("Serving invoices over MCP at http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
