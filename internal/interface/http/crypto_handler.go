package handlers

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/pkg/response"
)

// CryptoHandler hands out fresh EC keypairs for client-side encryption
// experiments. Key storage and negotiation are the client's problem.
type CryptoHandler struct {
	Logger *logrus.Logger
}

func NewCryptoHandler(logger *logrus.Logger) *CryptoHandler {
	return &CryptoHandler{Logger: logger}
}

// KeyPair GET /api/crypto/keypair
// Generates a P-256 keypair and returns the base64-encoded SPKI public key.
func (h *CryptoHandler) KeyPair(c *gin.Context) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		h.Logger.WithError(err).Error("keypair generation failed")
		response.Error(c, http.StatusInternalServerError, "keypair generation failed", nil)
		return
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		h.Logger.WithError(err).Error("public key encoding failed")
		response.Error(c, http.StatusInternalServerError, "keypair generation failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"publicKey": base64.StdEncoding.EncodeToString(der),
	}, "keypair generated")
}
