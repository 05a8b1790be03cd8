// Command auditctl is a small client for signing and submitting a single
// file-access audit to a running auditledger node, a supplemented feature
// (SPEC_FULL.md §7) grounded on the pack's cmd/assurectl client shape but
// adapted to this project's cobra CLI idiom and RSA signing scheme.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosaicnetworks/auditledger/internal/ledger"
	"github.com/mosaicnetworks/auditledger/internal/security"
	"github.com/mosaicnetworks/auditledger/internal/transport"
)

var (
	target     string
	dataDir    string
	reqID      string
	accessType string
	fileID     string
	fileName   string
	userID     string
	userName   string
	dialTimeout = 5 * time.Second
)

func main() {
	root := &cobra.Command{
		Use:   "auditctl",
		Short: "Sign and submit a file-access audit to an auditledger node",
		RunE:  submit,
	}

	root.Flags().StringVar(&target, "target", "127.0.0.1:1337", "IP:Port of the node to submit to")
	root.Flags().StringVar(&dataDir, "keys", "", "directory containing priv_key.pem/pub_key.pem")
	root.Flags().StringVar(&reqID, "req-id", "", "unique request id (required)")
	root.Flags().StringVar(&accessType, "access-type", "read", "access type, e.g. read/write/delete")
	root.Flags().StringVar(&fileID, "file-id", "", "file id (required)")
	root.Flags().StringVar(&fileName, "file-name", "", "file name")
	root.Flags().StringVar(&userID, "user-id", "", "user id (required)")
	root.Flags().StringVar(&userName, "user-name", "", "user name")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func submit(cmd *cobra.Command, args []string) error {
	if reqID == "" || fileID == "" || userID == "" || dataDir == "" {
		return fmt.Errorf("--req-id, --file-id, --user-id and --keys are required")
	}

	key := security.NewPemKey(dataDir)

	priv, err := key.ReadPrivateKey()
	if err != nil {
		return fmt.Errorf("reading private key: %s", err)
	}
	pubPEM, err := key.ReadPublicKeyPEM()
	if err != nil {
		return fmt.Errorf("reading public key: %s", err)
	}

	a := ledger.Audit{
		ReqID:      reqID,
		Timestamp:  time.Now().UnixNano(),
		AccessType: accessType,
		FileInfo:   ledger.FileInfo{FileID: fileID, FileName: fileName},
		UserInfo:   ledger.UserInfo{UserID: userID, UserName: userName},
		PublicKey:  pubPEM,
	}

	payload, err := ledger.Canonicalize(a)
	if err != nil {
		return fmt.Errorf("canonicalizing audit: %s", err)
	}

	sig, err := security.Sign(payload, priv)
	if err != nil {
		return fmt.Errorf("signing audit: %s", err)
	}
	a.Signature = sig

	resp, err := submitAudit(target, a)
	if err != nil {
		return fmt.Errorf("submitting audit: %s", err)
	}

	fmt.Printf("status=%s req_id=%s\n", resp.Status, resp.ReqID)
	if resp.Status != "success" {
		fmt.Println(resp.ErrorMessage)
		os.Exit(2)
	}
	return nil
}

// submitAudit dials target directly and speaks the NetTransport wire
// protocol: a command byte (0 = SubmitAudit) followed by a JSON request,
// and reads back the JSON response.
func submitAudit(target string, a ledger.Audit) (*transport.SubmitAuditResponse, error) {
	conn, err := net.DialTimeout("tcp", target, dialTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(dialTimeout))

	if _, err := conn.Write([]byte{0}); err != nil {
		return nil, err
	}

	req := transport.SubmitAuditRequest{Audit: a}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, err
	}

	var resp transport.SubmitAuditResponse
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
