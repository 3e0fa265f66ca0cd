package extract

import (
	"context"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、HTMLドキュメントの生バイト配列を取得する機能のインターフェースを定義します。
// Extractor は、この抽象に依存します。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// AddressOverrides は、クリニック名から既知の正しい住所を引く対応表です。
type AddressOverrides interface {
	Lookup(name string) (string, bool)
}
