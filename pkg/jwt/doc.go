// Package jwt issues and verifies the Manifestor API's RS256 access tokens.
//
// Tokens are built on github.com/golang-jwt/jwt/v5. Each token names the
// account (user_id, sub) and the session it was issued for (jti), so a
// revoked session invalidates its tokens even before they expire.
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "keys/private.pem",
//	    Issuer:         "manifestor-api",
//	    ExpirationMins: 60,
//	})
//	token, err := svc.Sign(jwt.Claims{UserID: id, Email: email,
//	    RegisteredClaims: gojwt.RegisteredClaims{ID: sessionID}})
//	claims, err := svc.Validate(token)
package jwt
