package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosaicnetworks/auditledger/internal/security"
)

// NewKeygenCmd produces the keygen command, which creates a fresh RSA
// keypair under --datadir, refusing to overwrite an existing one.
func NewKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Create a new RSA keypair for this node",
		RunE:  keygen,
	}
}

func keygen(cmd *cobra.Command, args []string) error {
	key := security.NewPemKey(conf.DataDir)

	if _, err := key.ReadPrivateKey(); err == nil {
		return fmt.Errorf("a key already lives under: %s", conf.DataDir)
	}

	_, pubPEM, err := key.GenerateAndWrite()
	if err != nil {
		return fmt.Errorf("generating keypair: %s", err)
	}

	fmt.Printf("Your private key has been saved to: %s/priv_key.pem\n", conf.DataDir)
	fmt.Printf("Your public key has been saved to: %s/pub_key.pem\n", conf.DataDir)
	fmt.Fprint(os.Stdout, pubPEM)

	return nil
}
