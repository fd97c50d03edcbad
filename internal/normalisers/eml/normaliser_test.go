package eml

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{".eml"}, n.SupportedExtensions())
	assert.Equal(t, 50, n.Priority())
}

func TestNormaliser_Extract_Plain(t *testing.T) {
	msg := crlf(`From: Legal <legal@acme.test>
To: counsel@buyer.test
Date: Mon, 5 Jun 2023 10:00:00 +0000
Subject: =?UTF-8?Q?Side_letter_=E2=80=93_fees?=
Content-Type: text/plain; charset=utf-8

The parties agree to waive the late fee.
`)

	got, err := New().Extract(context.Background(), "side-letter.eml", msg)
	require.NoError(t, err)

	assert.Equal(t, "From: Legal <legal@acme.test>\n"+
		"To: counsel@buyer.test\n"+
		"Date: Mon, 5 Jun 2023 10:00:00 +0000\n"+
		"Subject: Side letter – fees\n\n"+
		"The parties agree to waive the late fee.", got)
}

func TestNormaliser_Extract_MultipartPrefersPlain(t *testing.T) {
	msg := crlf(`Subject: Notice
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/html

<p>HTML body</p>
--inner
Content-Type: text/plain
Content-Transfer-Encoding: quoted-printable

Plain =
body
--inner--
--outer
Content-Type: application/pdf
Content-Disposition: attachment; filename="x.pdf"
Content-Transfer-Encoding: base64

JVBERi0=
--outer--
`)

	got, err := New().Extract(context.Background(), "notice.eml", msg)
	require.NoError(t, err)
	assert.Equal(t, "Subject: Notice\n\nPlain body", got)
}

func TestNormaliser_Extract_HTMLOnlyBase64(t *testing.T) {
	// "<p>Renewal notice</p>" in base64, wrapped.
	msg := crlf(`Subject: Renewal
Content-Type: text/html
Content-Transfer-Encoding: base64

PHA+UmVuZXdhbCBub3Rp
Y2U8L3A+
`)

	got, err := New().Extract(context.Background(), "renewal.eml", msg)
	require.NoError(t, err)
	assert.Equal(t, "Subject: Renewal\n\nRenewal notice", got)
}

func TestNormaliser_Extract_Invalid(t *testing.T) {
	_, err := New().Extract(context.Background(), "broken.eml", []byte("no headers here"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
