// Package account serves the /api/auth endpoints and stores users in MongoDB.
//
// Public routes: register, login, google and logout. Profile routes (PUT
// /profile, GET /me) sit behind the bearer-token middleware passed to Router.
package account
