package httpd

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// IndexFile はディレクトリ要求時に返すファイル名
const IndexFile = "index.html"

// シンボリックリンクの追跡上限（Linux の MAXSYMLINKS と同じ）
const maxSymlinkHops = 40

var errSymlinkLoop = errors.New("シンボリックリンクの追跡上限を超えました")

// PathResolver はリクエストターゲットをドキュメントルート配下のファイルに解決する
type PathResolver struct {
	root string // 正規化済みの絶対パス
}

// NewPathResolver は新しいPathResolverを作成する。root は正規化済みの絶対パスであること
func NewPathResolver(root string) *PathResolver {
	return &PathResolver{root: filepath.Clean(root)}
}

// Root はドキュメントルートを返す
func (r *PathResolver) Root() string {
	return r.root
}

// Resolve はリクエストターゲットを解決する。ルールは上から順に評価する:
//
//  1. 最初の "?" 以降を捨て、末尾 "/" の有無を記録する
//  2. パーセントデコードし、先頭の "/" を取り除いて相対パスにする
//  3. ルートに連結して正規化する（".", "..", シンボリックリンク）
//  4. ルート配下でなければ 403
//  5. ディレクトリなら末尾 "/" 必須（ルート以外）。index.html があれば 200、なければ 404
//  6. 末尾 "/" 付きでディレクトリでなければ 404
//  7. 存在しなければ 404
//  8. 通常ファイルでなければ 403
//  9. それ以外は 200
//
// トラバーサル判定は存在確認より先に行うため、ルート外の存在有無は漏れない。
func (r *PathResolver) Resolve(target string) Target {
	p, _, _ := strings.Cut(target, "?")
	wantsDir := strings.HasSuffix(p, "/")

	decoded, err := url.PathUnescape(p)
	if err != nil || strings.IndexByte(decoded, 0) >= 0 {
		return Target{Status: http.StatusBadRequest}
	}
	rel := strings.TrimLeft(decoded, "/")

	full, err := canonicalize(r.root, rel)
	if err != nil {
		return Target{Status: http.StatusForbidden}
	}
	if !within(r.root, full) {
		return Target{Status: http.StatusForbidden}
	}

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		if !wantsDir && rel != "" {
			return Target{Status: http.StatusForbidden}
		}
		return r.resolveIndex(full)
	}
	if wantsDir {
		return Target{Status: http.StatusNotFound}
	}
	if err != nil {
		return Target{Status: http.StatusNotFound}
	}
	if !info.Mode().IsRegular() {
		return Target{Status: http.StatusForbidden}
	}
	return Target{Path: full, Status: http.StatusOK}
}

// resolveIndex はディレクトリ直下の index.html を解決する
func (r *PathResolver) resolveIndex(dir string) Target {
	index, err := canonicalize(dir, IndexFile)
	if err != nil {
		return Target{Status: http.StatusNotFound}
	}
	// index.html がルート外へのリンクの場合
	if !within(r.root, index) {
		return Target{Status: http.StatusForbidden}
	}
	info, err := os.Stat(index)
	if err != nil || !info.Mode().IsRegular() {
		return Target{Status: http.StatusNotFound}
	}
	return Target{Path: index, Status: http.StatusOK}
}

// canonicalize は正規化済みの base に rel を連結し、".", ".." とシンボリックリンクを
// 解決した絶対パスを返す。存在しない要素以降は字句的に連結する。
func canonicalize(base, rel string) (string, error) {
	pending := splitComponents(rel)
	cur := base
	hops := 0

	for len(pending) > 0 {
		comp := pending[0]
		pending = pending[1:]

		switch comp {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
			continue
		}

		next := filepath.Join(cur, comp)
		info, err := os.Lstat(next)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
				return filepath.Join(append([]string{next}, pending...)...), nil
			}
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			cur = next
			continue
		}

		hops++
		if hops > maxSymlinkHops {
			return "", errSymlinkLoop
		}
		link, err := os.Readlink(next)
		if err != nil {
			return "", err
		}
		if filepath.IsAbs(link) {
			vol := filepath.VolumeName(link)
			cur = vol + string(filepath.Separator)
			link = link[len(vol):]
		}
		pending = append(splitComponents(link), pending...)
	}

	return cur, nil
}

func splitComponents(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(filepath.ToSlash(p), "/")
}

// within は p が root 自身またはその配下かを判定する
func within(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
