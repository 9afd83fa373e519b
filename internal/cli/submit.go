package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// submitCmd submits a single vesting instruction against a running
// vestd daemon over its JSON-RPC API, the same way any other JSON-RPC
// client would — it carries no privileged path into the engine.
var submitCmd = &cobra.Command{
	Use:   "submit <method> <json-params>",
	Short: "Submit one JSON-RPC instruction to a running vestd daemon",
	Long: `Submit sends a single JSON-RPC 2.0 request to a running vestd daemon
and prints the response. <method> is one of contract_create,
contract_withdraw, contract_topup, contract_transfer_recipient,
contract_cancel, contract_info, server_info. <json-params> is the raw
JSON object for that method's params (principals are lowercase hex).

Example:
  vestd submit contract_withdraw '{"escrow":"<hex>","authority":"<hex>","amount":1000}'`,
	Args: cobra.ExactArgs(2),
	RunE: runSubmit,
}

var submitAddr string

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&submitAddr, "addr", "", "vestd JSON-RPC address (default: server.rpc_listen from config)")
}

type jsonRpcEnvelope struct {
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      int             `json:"id"`
}

func runSubmit(cmd *cobra.Command, args []string) error {
	method, params := args[0], args[1]

	if !json.Valid([]byte(params)) {
		return fmt.Errorf("vestd submit: <json-params> is not valid JSON")
	}

	addr := submitAddr
	if addr == "" {
		addr = loadedConfig().Server.RPCListen
	}

	reqBody, err := json.Marshal(jsonRpcEnvelope{
		JsonRpc: "2.0",
		Method:  method,
		Params:  json.RawMessage(params),
		ID:      1,
	})
	if err != nil {
		return fmt.Errorf("vestd submit: encoding request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(fmt.Sprintf("http://%s/", addr), "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("vestd submit: posting to %s: %w", addr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vestd submit: reading response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
