package domain

import (
	"encoding/base64"
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMIMEType ファイル名から判定できない場合のMIMEタイプ
const DefaultMIMEType = "image/png"

const (
	dataURLPrefix = "data:"
	dataURLBase64 = ";base64,"
)

// MenuImage アップロードされたメニュー画像（リクエスト内でのみ有効）
type MenuImage struct {
	Data     []byte
	MIMEType string
}

// EncodedImage data:<mime>;base64,<data> 形式の画像
type EncodedImage string

// NewMenuImage ファイル名からMIMEタイプを判定してMenuImageを作成
func NewMenuImage(data []byte, filename string) MenuImage {
	return MenuImage{
		Data:     data,
		MIMEType: MIMETypeFromFilename(filename),
	}
}

// MIMETypeFromFilename 拡張子からMIMEタイプを判定する
func MIMETypeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return DefaultMIMEType
	}
	mt := mime.TypeByExtension(ext)
	if mt == "" {
		return DefaultMIMEType
	}
	// "text/plain; charset=utf-8" のようなパラメータは落とす
	if mediaType, _, err := mime.ParseMediaType(mt); err == nil {
		return mediaType
	}
	return mt
}

// Normalize 画像をdata URLに変換する
func Normalize(img MenuImage) (EncodedImage, error) {
	if len(img.Data) == 0 {
		return "", NewError(KindEncoding, "image data is empty", nil)
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}

	var b strings.Builder
	b.Grow(len(dataURLPrefix) + len(mimeType) + len(dataURLBase64) + base64.StdEncoding.EncodedLen(len(img.Data)))
	b.WriteString(dataURLPrefix)
	b.WriteString(mimeType)
	b.WriteString(dataURLBase64)
	b.WriteString(base64.StdEncoding.EncodeToString(img.Data))
	return EncodedImage(b.String()), nil
}

// MIMEType data URLのMIMEタイプ部分を返す
func (e EncodedImage) MIMEType() string {
	mimeType, _, ok := e.split()
	if !ok {
		return ""
	}
	return mimeType
}

// Payload base64部分を返す
func (e EncodedImage) Payload() string {
	_, payload, ok := e.split()
	if !ok {
		return ""
	}
	return payload
}

// Decode 元の画像バイト列に戻す
func (e EncodedImage) Decode() ([]byte, error) {
	_, payload, ok := e.split()
	if !ok {
		return nil, NewError(KindEncoding, "malformed data url", nil)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, NewError(KindEncoding, "invalid base64 payload", err)
	}
	return data, nil
}

func (e EncodedImage) String() string {
	return string(e)
}

func (e EncodedImage) split() (mimeType, payload string, ok bool) {
	s := string(e)
	if !strings.HasPrefix(s, dataURLPrefix) {
		return "", "", false
	}
	rest := s[len(dataURLPrefix):]
	idx := strings.Index(rest, dataURLBase64)
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+len(dataURLBase64):], true
}
