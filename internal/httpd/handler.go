package httpd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// State は1接続の処理段階
type State int

const (
	StateAccepted State = iota
	StateReadingHeaders
	StateParsed
	StateResolving
	StateResponding
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateAccepted:
		return "ACCEPTED"
	case StateReadingHeaders:
		return "READING_HEADERS"
	case StateParsed:
		return "PARSED"
	case StateResolving:
		return "RESOLVING"
	case StateResponding:
		return "RESPONDING"
	case StateClosed:
		return "CLOSED"
	case StateErrored:
		return "ERRORED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// HandlerOptions はConnHandlerの読み込み上限設定
type HandlerOptions struct {
	MaxHeaderSize int
	ReadTimeout   time.Duration
}

// ConnHandler は1接続分のリクエスト処理を行う。ワーカープールに投入される作業単位
type ConnHandler struct {
	resolver Resolver
	types    ContentTypeResolver
	logger   *slog.Logger
	opts     HandlerOptions
}

// NewConnHandler は新しいConnHandlerを作成する
func NewConnHandler(resolver Resolver, types ContentTypeResolver, logger *slog.Logger, opts HandlerOptions) *ConnHandler {
	if opts.MaxHeaderSize <= 0 {
		opts.MaxHeaderSize = DefaultMaxHeaderSize
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &ConnHandler{
		resolver: resolver,
		types:    types,
		logger:   logger,
		opts:     opts,
	}
}

// exchange は1回のリクエスト処理の状態
type exchange struct {
	conn   net.Conn
	logger *slog.Logger
	state  State
	start  time.Time

	req    *Request
	status int
	sent   int64
}

func (x *exchange) enter(s State) {
	x.logger.Debug("state", "state", s.String())
	x.state = s
}

// ServeConn は conn を処理し、どの経路でも必ず1回だけ閉じる。
// パニックはここで回復してログに残し、呼び出し元へは伝播させない
func (h *ConnHandler) ServeConn(conn net.Conn) {
	x := &exchange{
		conn: conn,
		logger: h.logger.With(
			"conn_id", uuid.NewString(),
			"peer", peerAddr(conn),
		),
		state: StateAccepted,
		start: time.Now(),
	}
	x.logger.Debug("state", "state", x.state.String())

	defer func() {
		if r := recover(); r != nil {
			x.logger.Error("接続処理中にパニックが発生しました", "state", x.state.String(), "panic", r)
			x.enter(StateErrored)
		}
		if err := conn.Close(); err != nil {
			x.logger.Debug("接続のクローズに失敗しました", "err", err)
		}
		x.enter(StateClosed)
	}()

	if err := h.serve(x); err != nil {
		x.logger.Warn("レスポンスの送信に失敗しました", "state", x.state.String(), "err", err)
		x.enter(StateErrored)
		return
	}
	if x.req != nil {
		x.logger.Info("request",
			"method", x.req.Method,
			"target", x.req.Target,
			"status", x.status,
			"bytes", x.sent,
			"duration", time.Since(x.start),
		)
	}
}

func (h *ConnHandler) serve(x *exchange) error {
	x.enter(StateReadingHeaders)
	raw, err := ReadRequest(x.conn, h.opts.MaxHeaderSize, h.opts.ReadTimeout)
	if err != nil {
		// 完全なリクエストが届かなかった接続には何も返さない
		x.logger.Debug("リクエストを読み込めませんでした", "err", err)
		return nil
	}

	rw := NewResponseWriter(x.conn)
	req, err := raw.Parse()
	if err != nil {
		x.logger.Debug("リクエストラインの解析に失敗しました", "err", err)
		x.req = &Request{}
		return h.reject(x, rw, http.StatusBadRequest)
	}
	x.req = req
	x.enter(StateParsed)

	if !req.Allowed() {
		return h.reject(x, rw, http.StatusMethodNotAllowed)
	}

	x.enter(StateResolving)
	target := h.resolver.Resolve(req.Target)
	x.logger.Debug("resolved", "target", req.Target, "path", target.Path, "status", target.Status)
	if !target.OK() {
		return h.reject(x, rw, target.Status)
	}

	x.enter(StateResponding)
	return h.respond(x, rw, target)
}

func (h *ConnHandler) reject(x *exchange, rw *ResponseWriter, code int) error {
	x.status = code
	return rw.WriteEmpty(code)
}

func (h *ConnHandler) respond(x *exchange, rw *ResponseWriter, target Target) error {
	f, err := os.Open(target.Path)
	if err != nil {
		return fmt.Errorf("ファイルを開けません: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("ファイル情報を取得できません: %w", err)
	}
	if !info.Mode().IsRegular() {
		return errors.New("通常ファイルではありません: " + target.Path)
	}

	size := info.Size()
	x.status = http.StatusOK
	if err := rw.WriteHeader(http.StatusOK, size, h.types.ContentType(target.Path)); err != nil {
		return err
	}
	if x.req.Method == MethodHead {
		return nil
	}

	// Content-Length と一致させるため stat 時点のサイズまでしか送らない
	n, err := rw.WriteBody(io.LimitReader(f, size))
	x.sent = n
	if err != nil {
		return err
	}
	if n != size {
		return fmt.Errorf("ファイルサイズが変化しました: want %d, sent %d", size, n)
	}
	return nil
}

func peerAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
