// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"strings"
)

// PartitionKind selects one of the two endpoint listings.
type PartitionKind string

const (
	// user-run client endpoints (is_globus_connect = true)
	Personal PartitionKind = "personal"
	// centrally hosted endpoints (is_globus_connect = false)
	Server PartitionKind = "server"
)

func (k PartitionKind) personalConnect() bool { return k == Personal }

// TieBreak decides how the connected flags of several servers of one
// endpoint are combined.
type TieBreak string

const (
	// the last listed server's flag wins
	LastServer TieBreak = "last"
	// connected if any server is connected
	AnyServer TieBreak = "any"
)

func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(LastServer):
		return LastServer, nil
	case string(AnyServer):
		return AnyServer, nil
	default:
		return "", fmt.Errorf("unknown server tie-break %q (want last or any)", s)
	}
}

type Link struct {
	DataType     string `json:"data_type,omitempty"`
	Href         string `json:"href"`
	Resource     string `json:"resource,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Title        string `json:"title,omitempty"`
}

type ServerRecord struct {
	DataType string `json:"data_type,omitempty"`
	ID       int64  `json:"id"`
	Hostname string `json:"hostname,omitempty"`
	URI      string `json:"uri,omitempty"`
	Scheme   string `json:"scheme,omitempty"`
	// 0 when the listing reports a null port
	Port    int    `json:"port"`
	Subject string `json:"subject,omitempty"`
	// nil when the listing omits the flag
	Connected *bool `json:"is_connected,omitempty"`
}

func (s ServerRecord) IsConnected() bool { return s.Connected != nil && *s.Connected }

// EndpointRecord is immutable once parsed. Flags the listing omits stay nil.
type EndpointRecord struct {
	DataType              string         `json:"data_type,omitempty"`
	Name                  string         `json:"name"`
	CanonicalName         string         `json:"canonical_name,omitempty"`
	Username              string         `json:"username,omitempty"`
	Activated             *bool          `json:"activated,omitempty"`
	IsGlobusConnect       *bool          `json:"is_globus_connect,omitempty"`
	MyProxyServer         string         `json:"myproxy_server,omitempty"`
	Description           string         `json:"description,omitempty"`
	Public                *bool          `json:"public,omitempty"`
	GlobusConnectSetupKey string         `json:"-"`
	Servers               []ServerRecord `json:"servers,omitempty"`
	LsLink                *Link          `json:"ls_link,omitempty"`
}

func (e EndpointRecord) IsActivated() bool { return e.Activated != nil && *e.Activated }

// Partition is one listing: endpoints in listing order plus the pagination
// metadata returned with it.
type Partition struct {
	Kind     PartitionKind `json:"kind"`
	DataType string        `json:"data_type,omitempty"`
	Length   int           `json:"length"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
	Total    int           `json:"total"`

	Endpoints []EndpointRecord `json:"endpoints"`
	byName    map[string]int
}

func emptyPartition(kind PartitionKind) *Partition {
	return &Partition{Kind: kind, byName: map[string]int{}}
}

func (p *Partition) Len() int { return len(p.Endpoints) }

// Get matches label case-insensitively.
func (p *Partition) Get(label string) (EndpointRecord, bool) {
	i, ok := p.byName[strings.ToLower(label)]
	if !ok {
		return EndpointRecord{}, false
	}
	return p.Endpoints[i], true
}
