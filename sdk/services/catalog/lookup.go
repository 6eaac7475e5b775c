// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import "strings"

// SplitName splits "owner#label". A name without '#' is all label.
func SplitName(fullName string) (owner, label string) {
	if i := strings.Index(fullName, "#"); i >= 0 {
		return fullName[:i], fullName[i+1:]
	}
	return "", fullName
}

func (s *CatalogService) Lookup(kind PartitionKind, fullName string) (EndpointRecord, bool) {
	_, label := SplitName(fullName)
	return s.Partition(kind).Get(label)
}

// IsConnected checks the personal partition.
func (s *CatalogService) IsConnected(fullName string) bool {
	return s.IsConnectedIn(Personal, fullName)
}

// IsConnectedIn reports whether the endpoint's servers are connected,
// combined according to the configured tie-break. Unknown endpoints and
// endpoints without servers are not connected.
func (s *CatalogService) IsConnectedIn(kind PartitionKind, fullName string) bool {
	rec, ok := s.Lookup(kind, fullName)
	if !ok {
		return false
	}
	connected := false
	for _, srv := range rec.Servers {
		switch s.tieBreak {
		case AnyServer:
			connected = connected || srv.IsConnected()
		default:
			connected = srv.IsConnected()
		}
	}
	return connected
}

// IsActivated checks the server partition.
func (s *CatalogService) IsActivated(fullName string) bool {
	return s.IsActivatedIn(Server, fullName)
}

func (s *CatalogService) IsActivatedIn(kind PartitionKind, fullName string) bool {
	rec, ok := s.Lookup(kind, fullName)
	return ok && rec.IsActivated()
}
