// Package vc issues and verifies W3C verifiable credentials as EdDSA signed
// JWTs.
package vc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnonni/tool5/agent/storage/api"
	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/agent/vdr"
	"github.com/bnonni/tool5/core"
	"github.com/bnonni/tool5/method"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/pkg/doc/verifiable"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	ContextV1 = "https://www.w3.org/2018/credentials/v1"
	TypeVC    = "VerifiableCredential"
)

var ErrUnsigned = errors.New("credential has no proof")

// Issuer is the agent issuing the credentials.
type Issuer interface {
	core.Identity
	Storage() api.AgentStorage
}

type CreateParams struct {
	Data    string `validate:"required,json"` // JSON object of subject claims
	Type    string // credential type added after VerifiableCredential
	Subject string // subject DID, the issuer by default
}

type VerifyParams struct {
	Data string `validate:"required"` // JWT or JSON credential
}

// Result describes a verified credential.
type Result struct {
	ID      string   `json:"id"`
	Issuer  string   `json:"issuer"`
	Subject string   `json:"subject"`
	Types   []string `json:"types"`
	Issued  string   `json:"issued,omitempty"`
}

// Facade implements the vc operations. The issuer is opened only when a
// credential is created.
type Facade struct {
	issuer func() (Issuer, error)
	vdr    *vdr.VDR
}

func New(issuer func() (Issuer, error)) *Facade {
	return &Facade{
		issuer: issuer,
		vdr:    vdr.New(),
	}
}

// Create issues a credential of the claims and returns it as a JWT.
func (f *Facade) Create(_ context.Context, p CreateParams) (jwt string, err error) {
	defer err2.Handle(&err, "vc create")

	try.To(utils.Validate(p))

	claims := make(map[string]any)
	if err := json.Unmarshal([]byte(p.Data), &claims); err != nil {
		return "", fmt.Errorf("%w: data must be a JSON object: %v", utils.ErrInvalidInput, err)
	}

	issuer := try.To1(f.issuer())
	subject := p.Subject
	if subject == "" {
		subject = issuer.DID()
	}
	claims["id"] = subject

	types := []string{TypeVC}
	if p.Type != "" && p.Type != TypeVC {
		types = append(types, p.Type)
	}
	now := time.Now().UTC().Truncate(time.Second)

	raw := try.To1(json.Marshal(map[string]any{
		"@context":          []string{ContextV1},
		"id":                utils.URN(),
		"type":              types,
		"issuer":            issuer.DID(),
		"issuanceDate":      now.Format(time.RFC3339),
		"credentialSubject": claims,
	}))
	cred := try.To1(verifiable.ParseCredential(raw,
		verifiable.WithDisabledProofCheck(),
		verifiable.WithCredDisableValidation()))

	jwtClaims := try.To1(cred.JWTClaims(false))
	jwt = try.To1(jwtClaims.MarshalJWS(verifiable.EdDSA, issuer, issuer.KID()))

	try.To(issuer.Storage().CredentialStorage().SaveCredential(api.Credential{
		ID:      cred.ID,
		Issuer:  issuer.DID(),
		Subject: subject,
		Type:    strings.Join(types, ","),
		JWT:     jwt,
		Issued:  now.Unix(),
	}))

	glog.V(1).Infof("issued credential %s to %s", cred.ID, subject)
	return jwt, nil
}

// Verify parses the credential and checks its signature with the issuer's
// key resolved through the VDR registry.
func (f *Facade) Verify(_ context.Context, p VerifyParams) (r *Result, err error) {
	defer err2.Handle(&err, "vc verify")

	try.To(utils.Validate(p))

	data := strings.TrimSpace(p.Data)
	isJSON := strings.HasPrefix(data, "{")

	opts := []verifiable.CredentialOpt{verifiable.WithCredDisableValidation()}
	if isJSON {
		opts = append(opts, verifiable.WithDisabledProofCheck())
	} else {
		opts = append(opts, verifiable.WithPublicKeyFetcher(
			verifiable.NewVDRKeyResolver(f.vdr.Registry()).PublicKeyFetcher()))
	}
	cred := try.To1(verifiable.ParseCredential([]byte(data), opts...))

	if cred.Issuer.ID == "" {
		return nil, fmt.Errorf("credential has no issuer")
	}
	if isJSON {
		if len(cred.Proofs) == 0 {
			return nil, ErrUnsigned
		}
		return nil, core.NotSupported(method.String(cred.Issuer.ID), "linked data proof verification")
	}

	r = &Result{
		ID:      cred.ID,
		Issuer:  cred.Issuer.ID,
		Subject: subjectID(cred.Subject),
		Types:   cred.Types,
	}
	if cred.Issued != nil {
		r.Issued = cred.Issued.Time.UTC().Format(time.RFC3339)
	}
	glog.V(1).Infof("verified credential %s from %s", r.ID, r.Issuer)
	return r, nil
}

func subjectID(subject any) string {
	switch s := subject.(type) {
	case string:
		return s
	case []verifiable.Subject:
		if len(s) > 0 {
			return s[0].ID
		}
	case verifiable.Subject:
		return s.ID
	case map[string]any:
		id, _ := s["id"].(string)
		return id
	}
	return ""
}
