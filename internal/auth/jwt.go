package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AudienceSessao identifica tokens de sessão emitidos por este serviço.
	AudienceSessao = "demandas"
	// AudienceBootstrap identifica tokens customizados trocados por sessão.
	AudienceBootstrap = "demandas-bootstrap"
)

// ErrTokenInvalido indica assinatura, audiência ou expiração inválidas.
var ErrTokenInvalido = errors.New("token inválido")

// Claims representa as informações presentes no token de sessão.
type Claims struct {
	AppID  string `json:"app"`
	Origem string `json:"origem"`
	jwt.RegisteredClaims
}

// JWTManager encapsula geração e validação de tokens de sessão.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

// IssuedToken descreve um token de sessão recém-emitido.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// GenerateSessionToken cria um JWT HS256 para a identidade informada.
func (m *JWTManager) GenerateSessionToken(subject, appID, origem string) (IssuedToken, error) {
	now := time.Now().UTC()
	expires := now.Add(m.ttl)
	jti := uuid.NewString()

	claims := Claims{
		AppID:  appID,
		Origem: origem,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{AudienceSessao},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, JTI: jti, ExpiresAt: expires}, nil
}

// ParseAndValidate verifica assinatura, audiência e expiração.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(AudienceSessao),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrTokenInvalido, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}
