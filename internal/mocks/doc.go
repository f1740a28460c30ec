// Package mocks provides shared mock implementations for tests.
//
// Each mock has function fields for the methods of the interface it
// implements; unset fields fall back to the mock's default values:
//
//	jwt := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return nil, auth.ErrExpiredToken
//	    },
//	}
package mocks
