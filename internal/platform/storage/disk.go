package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const avatarMaxSize = 256

// Disk stores uploads under a local directory and serves them from a public
// URL prefix. Avatars are normalized: decoded, downscaled to fit 256x256 and
// re-encoded as webp so the member grid stays light.
type Disk struct {
	dir     string
	baseURL string
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	for _, sub := range []string{"members", "daily"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload dir: %w", err)
		}
	}
	return &Disk{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) SaveAvatar(name string, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode avatar image: %w", err)
	}
	img = imaging.Fit(img, avatarMaxSize, avatarMaxSize, imaging.Lanczos)

	ref := path.Join("members", strings.TrimSuffix(name, path.Ext(name))+".webp")
	f, err := os.Create(filepath.Join(d.dir, filepath.FromSlash(ref)))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := webp.Encode(f, img, &webp.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode avatar: %w", err)
	}
	return ref, nil
}

func (d *Disk) SavePhoto(name string, r io.Reader) (string, error) {
	ref := path.Join("daily", name)
	f, err := os.Create(filepath.Join(d.dir, filepath.FromSlash(ref)))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return ref, nil
}

func (d *Disk) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(d.dir, filepath.FromSlash(ref)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *Disk) AvatarURL(ref string) string { return d.url(ref) }
func (d *Disk) PhotoURL(ref string) string  { return d.url(ref) }

func (d *Disk) url(ref string) string {
	if ref == "" {
		return ""
	}
	return d.baseURL + "/" + ref
}
