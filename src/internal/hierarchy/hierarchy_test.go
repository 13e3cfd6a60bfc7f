// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package hierarchy_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/config"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/hierarchy"
	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/chain"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
	x509keys "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/keys"
	x509store "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/store"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newService returns a service over a fresh store with 2048-bit authorities.
func newService(t *testing.T) (*hierarchy.Service, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Root.KeyBits = 2048
	cfg.Intermediate.KeyBits = 2048
	cfg.KeyPasswordEnv = ""

	store, err := x509store.Open(t.TempDir())
	require.NoError(t, err)

	var buf bytes.Buffer
	log := logger.NewCLILogger()
	log.SetOutput(&buf)
	return hierarchy.New(cfg, store, log), &buf
}

func san(t *testing.T, cert *x509certs.Certificate) x509ext.SubjectAltName {
	t.Helper()
	names, ok := cert.Extensions().SubjectAltName()
	require.True(t, ok, "subjectAltName present")
	return names
}

func TestInit(t *testing.T) {
	svc, out := newService(t)
	assert.False(t, svc.Exists())

	intermediate, err := svc.Init(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, svc.Exists())
	assert.Contains(t, out.String(), `Generating root CA "Root CA" (2048-bit key)`)
	assert.Contains(t, out.String(), "Created Intermediate CA")

	root := intermediate.Root()
	require.NotNil(t, root)
	assert.Equal(t, "CN=Root CA,OU=DI,O=CT,L=Vitoria,ST=ES,C=BR", root.Subject().String())
	assert.Equal(t, "Intermediate CA", intermediate.Certificate().Subject().CommonName())

	_, err = svc.Init(context.Background(), false)
	assert.ErrorIs(t, err, hierarchy.ErrExists)

	replaced, err := svc.Init(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, replaced.Root().Equal(root))

	stored, err := svc.Store().LoadCertificate(config.RootName)
	require.NoError(t, err)
	assert.True(t, stored.Equal(replaced.Root()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fresh, _ := newService(t)
	_, err = fresh.Init(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fresh.Exists(), "nothing is saved when cancelled")
}

func TestIssue(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Issue(context.Background(), hierarchy.Request{Domain: "localhost"})
	assert.ErrorIs(t, err, hierarchy.ErrMissing)

	_, err = svc.Init(context.Background(), false)
	require.NoError(t, err)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Default SAN",
			testFunc: func(t *testing.T) {
				issued, err := svc.Issue(context.Background(), hierarchy.Request{Domain: "localhost"})
				require.NoError(t, err)
				require.Len(t, issued, 1)
				assert.Equal(t, "localhost", issued[0].Name)

				names := san(t, issued[0].Leaf.Certificate)
				assert.Equal(t, []string{"localhost"}, names.DNSNames())
				assert.Equal(t, []string{"127.0.0.1"}, names.IPAddresses())

				bundle, err := svc.Store().LoadBundle("localhost")
				require.NoError(t, err)
				require.Len(t, bundle, 2)
				assert.True(t, bundle[0].Equal(issued[0].Leaf.Certificate))

				below, anchor, err := svc.ResolveAnchor(bundle, nil)
				require.NoError(t, err)
				result, err := x509chain.Validate(below, anchor, time.Now())
				require.NoError(t, err)
				assert.Equal(t, 2, result.Length)
			},
		},
		{
			name: "Batch with store name",
			testFunc: func(t *testing.T) {
				issued, err := svc.Issue(context.Background(),
					hierarchy.Request{Domain: "api.localhost", Name: "api", DNSNames: []string{"api.internal"}},
					hierarchy.Request{Domain: "web.localhost", IPAddresses: []string{"::1", "10.0.0.1"}},
				)
				require.NoError(t, err)
				require.Len(t, issued, 2)
				assert.Equal(t, "api", issued[0].Name)
				assert.Equal(t, "web.localhost", issued[1].Name)
				assert.True(t, svc.Store().Exists("api"))

				assert.Equal(t, []string{"api.localhost", "api.internal"}, san(t, issued[0].Leaf.Certificate).DNSNames())
				assert.Equal(t, []string{"::1", "10.0.0.1"}, san(t, issued[1].Leaf.Certificate).IPAddresses())
				assert.NotEqual(t, issued[0].Leaf.Certificate.SerialNumber(), issued[1].Leaf.Certificate.SerialNumber())
			},
		},
		{
			name: "Invalid requests",
			testFunc: func(t *testing.T) {
				_, err := svc.Issue(context.Background())
				assert.ErrorIs(t, err, hierarchy.ErrInvalidRequest)

				_, err = svc.Issue(context.Background(), hierarchy.Request{})
				assert.ErrorIs(t, err, hierarchy.ErrInvalidRequest)

				_, err = svc.Issue(context.Background(), hierarchy.Request{Domain: "bad", IPAddresses: []string{"not-an-ip"}})
				assert.Error(t, err)
				assert.False(t, svc.Store().Exists("bad"))
			},
		},
		{
			name: "Authority names are reserved",
			testFunc: func(t *testing.T) {
				before, err := svc.Store().LoadCertificate(config.IntermediateName)
				require.NoError(t, err)

				for _, req := range []hierarchy.Request{
					{Domain: config.IntermediateName},
					{Domain: config.RootName},
					{Domain: "localhost", Name: config.IntermediateName},
				} {
					_, err := svc.Issue(context.Background(), req)
					assert.ErrorIs(t, err, hierarchy.ErrReservedName, "request %+v", req)
				}

				after, err := svc.Store().LoadCertificate(config.IntermediateName)
				require.NoError(t, err)
				assert.True(t, after.Equal(before), "intermediate left untouched")

				intermediate, err := svc.Intermediate()
				require.NoError(t, err)
				assert.True(t, intermediate.Certificate().IsCA())
			},
		},
		{
			name: "Batch is checked before issuing",
			testFunc: func(t *testing.T) {
				_, err := svc.Issue(context.Background(),
					hierarchy.Request{Domain: "first.localhost"},
					hierarchy.Request{Domain: "a/b"},
				)
				assert.ErrorIs(t, err, hierarchy.ErrInvalidRequest)
				assert.ErrorIs(t, err, x509store.ErrInvalidName)
				assert.False(t, svc.Store().Exists("first.localhost"))

				_, err = svc.Issue(context.Background(),
					hierarchy.Request{Domain: "dup.localhost"},
					hierarchy.Request{Domain: "other.localhost", Name: "dup.localhost"},
				)
				assert.ErrorIs(t, err, hierarchy.ErrInvalidRequest)
				assert.False(t, svc.Store().Exists("dup.localhost"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestCheckName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
	}{
		{name: "localhost"},
		{name: "api.localhost"},
		{name: config.RootName, wantErr: hierarchy.ErrReservedName},
		{name: config.IntermediateName, wantErr: hierarchy.ErrReservedName},
		{name: "../escape", wantErr: x509store.ErrInvalidName},
		{name: "", wantErr: hierarchy.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hierarchy.CheckName(tt.name)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncryptedStore(t *testing.T) {
	svc, _ := newService(t)
	svc.Config().KeyPasswordEnv = "HIERARCHY_TEST_PASSWORD"
	t.Setenv("HIERARCHY_TEST_PASSWORD", "s3cret")

	_, err := svc.Init(context.Background(), false)
	require.NoError(t, err)
	_, err = svc.Intermediate()
	require.NoError(t, err)

	t.Setenv("HIERARCHY_TEST_PASSWORD", "")
	_, err = svc.Intermediate()
	assert.ErrorIs(t, err, x509keys.ErrPasswordRequired)

	t.Setenv("HIERARCHY_TEST_PASSWORD", "wrong")
	_, err = svc.Intermediate()
	assert.ErrorIs(t, err, x509keys.ErrDecryptPrivateKey)
}

func TestResolveAnchor(t *testing.T) {
	svc, _ := newService(t)
	intermediate, err := svc.Init(context.Background(), false)
	require.NoError(t, err)
	issued, err := svc.Issue(context.Background(), hierarchy.Request{Domain: "localhost"})
	require.NoError(t, err)

	leaf := issued[0].Leaf.Certificate
	inter := intermediate.Certificate()
	root := intermediate.Root()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Explicit anchor drops trailing copy",
			testFunc: func(t *testing.T) {
				below, anchor, err := svc.ResolveAnchor([]*x509certs.Certificate{leaf, inter, root}, root)
				require.NoError(t, err)
				assert.Len(t, below, 2)
				assert.True(t, anchor.Equal(root))
			},
		},
		{
			name: "Explicit anchor keeps chain",
			testFunc: func(t *testing.T) {
				below, anchor, err := svc.ResolveAnchor([]*x509certs.Certificate{leaf}, inter)
				require.NoError(t, err)
				assert.Len(t, below, 1)
				assert.True(t, anchor.Equal(inter))
			},
		},
		{
			name: "Trailing root",
			testFunc: func(t *testing.T) {
				below, anchor, err := svc.ResolveAnchor([]*x509certs.Certificate{leaf, inter, root}, nil)
				require.NoError(t, err)
				assert.Len(t, below, 2)
				assert.True(t, anchor.Equal(root))
			},
		},
		{
			name: "Stored root",
			testFunc: func(t *testing.T) {
				below, anchor, err := svc.ResolveAnchor([]*x509certs.Certificate{leaf, inter}, nil)
				require.NoError(t, err)
				assert.Len(t, below, 2)
				assert.True(t, anchor.Equal(root))
			},
		},
		{
			name: "No anchor",
			testFunc: func(t *testing.T) {
				empty, _ := newService(t)
				below, anchor, err := empty.ResolveAnchor([]*x509certs.Certificate{leaf, inter}, nil)
				assert.ErrorIs(t, err, hierarchy.ErrNoAnchor)
				assert.Nil(t, anchor)
				assert.Len(t, below, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "Date", input: "2030-01-02", want: time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "RFC 3339", input: "2030-01-02T03:04:05Z", want: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "Garbage", input: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hierarchy.ParseTime(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, hierarchy.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	now, err := hierarchy.ParseTime("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}
