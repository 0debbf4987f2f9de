package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenCustomizadoDesativado indica que a troca de token não foi configurada.
var ErrTokenCustomizadoDesativado = errors.New("troca de token customizado desativada")

// CustomTokens assina e verifica tokens de bootstrap (audiência demandas-bootstrap).
// O subject do token é a identidade que a sessão assume.
type CustomTokens struct {
	secret []byte
}

// NewCustomTokens cria o verificador; segredo vazio desativa a troca.
func NewCustomTokens(secret string) *CustomTokens {
	return &CustomTokens{secret: []byte(strings.TrimSpace(secret))}
}

// Enabled indica se há segredo configurado.
func (c *CustomTokens) Enabled() bool {
	return c != nil && len(c.secret) > 0
}

// Issue assina um token de bootstrap para subject válido por ttl.
func (c *CustomTokens) Issue(subject string, ttl time.Duration) (string, error) {
	if !c.Enabled() {
		return "", ErrTokenCustomizadoDesativado
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject obrigatório")
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{AudienceBootstrap},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify valida o token e devolve a identidade que ele concede.
func (c *CustomTokens) Verify(tokenString string) (string, error) {
	if !c.Enabled() {
		return "", ErrTokenCustomizadoDesativado
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(AudienceBootstrap),
	)
	token, err := parser.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return "", errors.Join(ErrTokenInvalido, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", ErrTokenInvalido
	}
	return strings.TrimSpace(claims.Subject), nil
}

// RevokedKey monta a chave Redis que marca um token de sessão como revogado.
func RevokedKey(jti string) string {
	return "sessao:revogada:" + jti
}
