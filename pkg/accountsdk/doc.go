/*
Package accountsdk is the Go client for the accounts HTTP API.

# Client vs Session

Client covers the public endpoints: registration, the two-step login and
health checks. A successful verification returns a Session that carries
the signed home pass:

	client := accountsdk.NewClient("http://localhost:8080")

	_, err := client.Register(ctx, accountsdk.RegisterRequest{
		Username: "alice",
		Password: "pw1",
		Phone:    "+15550001111",
	})

	attempt, err := client.Login(ctx, accountsdk.LoginRequest{
		Username: "alice",
		Password: "pw1",
		Phone:    "+15550001111",
	})

	// The code arrives by SMS at attempt.Destination.
	session, err := client.Verify(ctx, attempt.AttemptID, code)

	home, err := session.Home(ctx)
	err = session.SignOut(ctx)

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status,
the machine-readable code and a description. Compare against the predefined
values with errors.Is:

	if errors.Is(err, accountsdk.ErrInvalidCode) {
		// ask for the code again
	}
*/
package accountsdk
