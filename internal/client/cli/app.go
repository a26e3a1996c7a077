package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/timeboard/internal/client/config"
	gs "github.com/dmitrijs2005/timeboard/internal/server/grpc"
)

// caller is the slice of the gRPC client the CLI needs.
type caller interface {
	Call(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type App struct {
	config *config.Config
	conn   io.Closer
	api    caller
	http   *http.Client
	token  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	opts := append(gs.DialOptions(c.MaxMessageSize), grpc.WithTransportCredentials(insecure.NewCredentials()))
	conn, err := grpc.NewClient(c.ServerEndpointAddr, opts...)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		conn:   conn,
		api:    gs.NewClient(conn),
		http:   &http.Client{Timeout: c.CallTimeout},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.conn.Close()

	if err := a.OpenSession(ctx); err != nil {
		log.Printf("cannot reach %s: %v", a.config.ServerEndpointAddr, err)
		return
	}

	fmt.Fprintln(a.out, "Welcome to TimeBoard CLI (type 'help' for commands)")
	runREPL(ctx, a, a.reader, a.out)
}

// OpenSession starts a new, empty timeline on the server.
func (a *App) OpenSession(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
	defer cancel()

	out, err := a.api.Call(ctx, gs.MethodOpenSession, nil)
	if err != nil {
		return err
	}
	a.token = out.GetFields()["session_token"].GetStringValue()
	return nil
}

// call invokes method within the session. An expired session is replaced
// once and the call retried.
func (a *App) call(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	out, err := a.callOnce(ctx, method, in)
	if status.Code(err) != codes.Unauthenticated {
		return out, err
	}

	if err := a.OpenSession(ctx); err != nil {
		return nil, err
	}
	fmt.Fprintln(a.out, "Session expired; started a new, empty timeline.")
	return a.callOnce(ctx, method, in)
}

func (a *App) callOnce(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.CallTimeout)
	defer cancel()
	return a.api.Call(gs.WithSession(ctx, a.token), method, in)
}

// report prints err, listing per-field problems when the server sent them.
func (a *App) report(err error) {
	st, ok := status.FromError(err)
	if !ok {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Error: %s\n", st.Message())
	for _, d := range st.Details() {
		if fields, ok := d.(*structpb.Struct); ok {
			for name, msg := range fields.GetFields() {
				fmt.Fprintf(a.out, "  %s: %s\n", name, msg.GetStringValue())
			}
		}
	}
}
