package ledgersdk

import (
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the parsed shape of a client configuration file (spec §6):
// the operator identity, which network to join, and (for "custom"
// networks) where to load the address book from.
type Config struct {
	Operator struct {
		AccountID  string `toml:"accountId"`
		PrivateKey string `toml:"privateKey"`
	} `toml:"operator"`

	// Network selects "mainnet", "testnet", "previewnet", or "custom".
	Network string `toml:"network"`

	// MirrorNetwork is the mirror node address(es) used for periodic
	// address-book refresh, "host:port" form. Empty disables refresh.
	MirrorNetwork []string `toml:"mirrorNetwork"`

	// AddressBookFile names a YAML file mapping account IDs to endpoint
	// lists, required when Network == "custom".
	AddressBookFile string `toml:"addressBookFile"`
}

// addressBookYAML is the decoded shape of an AddressBookFile: a mapping
// from "shard.realm.num" to a list of "a.b.c.d:port" endpoint strings.
type addressBookYAML map[string][]string

// LoadConfig parses a TOML file at path into a Config (spec §6).
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, NewBasicParseError("failed to parse config file", err)
	}
	return &cfg, nil
}

// addressBook loads and decodes cfg.AddressBookFile into the
// map[AccountID][]Endpoint shape NewClientForAddresses expects.
func (cfg *Config) addressBook() (map[AccountID][]Endpoint, error) {
	raw, err := os.ReadFile(cfg.AddressBookFile)
	if err != nil {
		return nil, NewBasicParseError("failed to read address book file", err)
	}
	var book addressBookYAML
	if err := yaml.Unmarshal(raw, &book); err != nil {
		return nil, NewBasicParseError("failed to parse address book file", err)
	}
	out := make(map[AccountID][]Endpoint, len(book))
	for idStr, endpointStrs := range book {
		id, err := ParseAccountID(idStr)
		if err != nil {
			return nil, err
		}
		endpoints := make([]Endpoint, 0, len(endpointStrs))
		for _, es := range endpointStrs {
			ep, err := parseEndpoint(es)
			if err != nil {
				return nil, err
			}
			endpoints = append(endpoints, ep)
		}
		out[id] = endpoints
	}
	return out, nil
}

// ClientFromConfig builds a Client from a parsed Config: resolving the
// named or custom network, wiring the mirror-network refresher if
// configured, and installing the operator (spec §4.F, §6).
func ClientFromConfig(cfg *Config) (*Client, error) {
	var client *Client

	switch cfg.Network {
	case "mainnet", "testnet", "previewnet":
		var err error
		client, err = NewClientForName(cfg.Network)
		if err != nil {
			return nil, err
		}
	case "custom", "":
		book, err := cfg.addressBook()
		if err != nil {
			return nil, err
		}
		client = NewClientForAddresses(book, LedgerID{})
	default:
		return nil, NewBasicParseError("unrecognized network: "+cfg.Network, nil)
	}

	if len(cfg.MirrorNetwork) > 0 {
		client.SetMirrorNetwork(newMirrorAddressBookFetcher(cfg.MirrorNetwork))
	}

	if cfg.Operator.AccountID != "" {
		accountID, err := ParseAccountID(cfg.Operator.AccountID)
		if err != nil {
			return nil, err
		}
		key, err := ParsePrivateKey(cfg.Operator.PrivateKey)
		if err != nil {
			return nil, err
		}
		client.SetOperator(accountID, key.Signer())
	}

	return client, nil
}
