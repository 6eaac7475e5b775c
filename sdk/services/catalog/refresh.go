// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/cvrgrid/waveform-transfer/sdk/errtypes"
)

// Listing documents as sent by the service. encoding/json matches keys
// case-insensitively and skips unknown ones.
type listingDocument struct {
	DataType string             `json:"DATA_TYPE"`
	Length   *number            `json:"length"`
	Limit    number             `json:"limit"`
	Offset   number             `json:"offset"`
	Total    number             `json:"total"`
	Data     []endpointDocument `json:"DATA"`
}

type endpointDocument struct {
	DataType              string           `json:"DATA_TYPE"`
	Name                  string           `json:"name"`
	CanonicalName         string           `json:"canonical_name"`
	Username              string           `json:"username"`
	Activated             *bool            `json:"activated"`
	IsGlobusConnect       *bool            `json:"is_globus_connect"`
	MyProxyServer         string           `json:"myproxy_server"`
	Description           string           `json:"description"`
	Public                *bool            `json:"public"`
	GlobusConnectSetupKey string           `json:"globus_connect_setup_key"`
	Data                  []serverDocument `json:"DATA"`
	LsLink                *linkDocument    `json:"ls_link"`
}

type serverDocument struct {
	DataType    string `json:"DATA_TYPE"`
	ID          number `json:"id"`
	Hostname    string `json:"hostname"`
	URI         string `json:"uri"`
	Scheme      string `json:"scheme"`
	Port        number `json:"port"`
	Subject     string `json:"subject"`
	IsConnected *bool  `json:"is_connected"`
}

type linkDocument struct {
	DataType     string `json:"DATA_TYPE"`
	Href         string `json:"href"`
	Resource     string `json:"resource"`
	Relationship string `json:"relationship"`
	Title        string `json:"title"`
}

// number accepts a JSON integer, a quoted integer or null (left as zero).
type number int64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("not an integer: %s", b)
	}
	*n = number(f)
	return nil
}

// Refresh fetches both partitions for username and replaces the snapshot.
// On failure the previous snapshot is kept.
func (s *CatalogService) Refresh(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return errtypes.Input("catalog.refresh", nil, "username is required")
	}

	next := map[PartitionKind]*Partition{}
	for _, kind := range []PartitionKind{Personal, Server} {
		p, err := s.fetchPartition(ctx, username, kind)
		s.metrics.CatalogRefresh(string(kind), err == nil)
		if err != nil {
			s.log.Error("endpoint listing failed",
				slog.String("partition", string(kind)),
				slog.String("username", username),
				slog.Any("error", err))
			return err
		}
		s.log.Info("endpoint listing",
			slog.String("partition", string(kind)),
			slog.String("username", username),
			slog.Int("endpoints", p.Len()))
		next[kind] = p
	}

	s.partitions = next
	return nil
}

func (s *CatalogService) fetchPartition(ctx context.Context, username string, kind PartitionKind) (*Partition, error) {
	op := "catalog.refresh." + string(kind)
	filter := fmt.Sprintf("username:%s/is_globus_connect:%t", username, kind.personalConnect())
	url := s.http.BuildURL("endpoint_list", "", "", map[string]string{"filter": filter})

	body, status, err := s.http.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errtypes.Catalog(op, err, "listing request failed")
	}
	if status != http.StatusOK {
		return nil, errtypes.Catalog(op, nil, "listing responded with status %d", status)
	}
	return parsePartition(op, kind, body)
}

func parsePartition(op string, kind PartitionKind, body []byte) (*Partition, error) {
	var doc listingDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errtypes.Catalog(op, err, "malformed listing document")
	}

	p := emptyPartition(kind)
	p.DataType = doc.DataType
	p.Limit = int(doc.Limit)
	p.Offset = int(doc.Offset)
	p.Total = int(doc.Total)
	if doc.Length != nil {
		p.Length = int(*doc.Length)
		if p.Length != len(doc.Data) {
			return nil, errtypes.Catalog(op, nil,
				"listing declares length %d but carries %d endpoints", p.Length, len(doc.Data))
		}
	}

	p.Endpoints = make([]EndpointRecord, 0, len(doc.Data))
	for _, ed := range doc.Data {
		key := strings.ToLower(ed.Name)
		if _, dup := p.byName[key]; dup {
			return nil, errtypes.Catalog(op, nil, "duplicate endpoint name %q", ed.Name)
		}
		p.byName[key] = len(p.Endpoints)
		p.Endpoints = append(p.Endpoints, ed.record())
	}
	return p, nil
}

func (ed endpointDocument) record() EndpointRecord {
	rec := EndpointRecord{
		DataType:              ed.DataType,
		Name:                  ed.Name,
		CanonicalName:         ed.CanonicalName,
		Username:              ed.Username,
		Activated:             ed.Activated,
		IsGlobusConnect:       ed.IsGlobusConnect,
		MyProxyServer:         ed.MyProxyServer,
		Description:           ed.Description,
		Public:                ed.Public,
		GlobusConnectSetupKey: ed.GlobusConnectSetupKey,
	}
	if ed.LsLink != nil {
		rec.LsLink = &Link{
			DataType:     ed.LsLink.DataType,
			Href:         ed.LsLink.Href,
			Resource:     ed.LsLink.Resource,
			Relationship: ed.LsLink.Relationship,
			Title:        ed.LsLink.Title,
		}
	}
	for _, sd := range ed.Data {
		rec.Servers = append(rec.Servers, ServerRecord{
			DataType:  sd.DataType,
			ID:        int64(sd.ID),
			Hostname:  sd.Hostname,
			URI:       sd.URI,
			Scheme:    sd.Scheme,
			Port:      int(sd.Port),
			Subject:   sd.Subject,
			Connected: sd.IsConnected,
		})
	}
	return rec
}
