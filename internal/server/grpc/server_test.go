package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/otp"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakeUser{})
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakeUser{})
	if err != nil {
		t.Fatalf("NewGRPCServer error (constructor should not fail here): %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

// ---- end-to-end over bufconn ----

type e2e struct {
	conn   *grpc.ClientConn
	client pb.AuthServiceClient
	sender *otp.MemorySender
}

func startE2E(t *testing.T) e2e {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	tokens, err := auth.NewTokenEngine([]byte(cfg.SecretKey), cfg.SigningAlgorithm, cfg.AccessTokenValidityDuration)
	require.NoError(t, err)

	sender := otp.NewMemorySender()
	us, err := services.NewUserService(nil, repomanager.NewMemoryRepositoryManager(), tokens, sender, cfg, logging.Nop(),
		services.WithPasswordHasher(cryptox.NewArgon2Hasher(cryptox.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32})),
		services.WithOTPHasher(cryptox.NewBcryptHasher(bcrypt.MinCost)),
	)
	require.NoError(t, err)

	srv, err := NewGRPCServer("bufnet", nopLogger{}, us)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	return e2e{conn: conn, client: pb.NewAuthServiceClient(conn), sender: sender}
}

func bearerCtx(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(),
		common.AuthorizationHeaderName, common.BearerScheme+" "+token)
}

func TestE2E_PasswordOnlyFlow(t *testing.T) {
	e := startE2E(t)
	ctx := context.Background()

	var header metadata.MD
	reg, err := e.client.Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Password: "p"}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, "1", reg.GetId())
	assert.NotEmpty(t, header.Get(common.RequestIDHeaderName))

	_, err = e.client.Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Password: "other"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = e.client.Login(ctx, &pb.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	login, err := e.client.Login(ctx, &pb.LoginRequest{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", login.GetTokenType())

	who, err := e.client.ValidateToken(bearerCtx(login.GetAccessToken()), &pb.ValidateTokenRequest{})
	require.NoError(t, err)
	assert.Equal(t, "1", who.GetUser().Id)
	assert.Equal(t, "a@x.com", who.GetUser().Email)
}

func TestE2E_TwoFactorFlow(t *testing.T) {
	e := startE2E(t)
	ctx := context.Background()

	_, err := e.client.Register(ctx, &pb.RegisterRequest{Email: "b@x.com", Password: "p", TwoFactorEnabled: true})
	require.NoError(t, err)

	login, err := e.client.Login(ctx, &pb.LoginRequest{Email: "b@x.com", Password: "p"})
	require.NoError(t, err)
	challenge := login.GetAccessToken()

	// a challenge token is not an access token
	_, err = e.client.ValidateToken(bearerCtx(challenge), &pb.ValidateTokenRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	code, ok := e.sender.Last("b@x.com")
	require.True(t, ok)

	if code != "000000" {
		_, err = e.client.VerifyOTP(bearerCtx(challenge), &pb.VerifyOTPRequest{Otp: "000000"})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	}

	_, err = e.client.VerifyOTP(ctx, &pb.VerifyOTPRequest{Otp: code})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	access, err := e.client.VerifyOTP(bearerCtx(challenge), &pb.VerifyOTPRequest{Otp: code})
	require.NoError(t, err)

	who, err := e.client.ValidateToken(bearerCtx(access.GetAccessToken()), &pb.ValidateTokenRequest{})
	require.NoError(t, err)
	assert.True(t, who.GetUser().TwoFactorEnabled)
}

func TestE2E_Ping(t *testing.T) {
	e := startE2E(t)
	resp, err := e.client.Ping(context.Background(), &pb.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.GetStatus())
}

func TestE2E_PlainProtobufCaller(t *testing.T) {
	e := startE2E(t)

	// no generated stub and no call options, as grpcurl or a foreign client would call it
	resp := &pb.PingResponse{}
	err := e.conn.Invoke(context.Background(), pb.AuthService_Ping_FullMethodName, &emptypb.Empty{}, resp)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.GetStatus())

	_, err = e.client.Register(context.Background(), &pb.RegisterRequest{Email: "c@x.com", Password: "p"})
	require.NoError(t, err)

	login := &pb.LoginResponse{}
	err = e.conn.Invoke(context.Background(), pb.AuthService_Login_FullMethodName,
		&pb.LoginRequest{Email: "c@x.com", Password: "p"}, login)
	require.NoError(t, err)
	assert.NotEmpty(t, login.GetAccessToken())
}
