package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"github.com/andybalholm/brotli"
)

// gzip魔数
var gzipMagic = []byte{0x1f, 0x8b}

// decodeStream 根据Content-Encoding包装响应体读取器
// 支持 gzip, deflate, br (Brotli); 未知编码原样返回并记录警告
func decodeStream(contentEncoding string, body io.Reader) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip", "x-gzip":
		reader, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		return reader, nil

	case "deflate":
		return flate.NewReader(body), nil

	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil

	case "", "identity":
		return io.NopCloser(body), nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return io.NopCloser(body), nil
	}
}

// decodePageBody 解压页面响应体
// 页面由colly获取,colly已自动处理gzip,所以gzip只在内容确实带有魔数时才解压
func decodePageBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))
	if (encoding == "gzip" || encoding == "x-gzip") && !bytes.HasPrefix(body, gzipMagic) {
		return body, nil
	}

	reader, err := decodeStream(encoding, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", encoding, err)
	}
	return decoded, nil
}
