package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbsolute(t *testing.T) {
	tests := []struct {
		name string
		text string
		want URI
	}{
		{
			name: "full uri",
			text: "hdfs://alice@namenode:9000/data/in",
			want: URI{Scheme: "hdfs", UserInfo: "alice", Host: "namenode", Port: 9000, Path: "/data/in"},
		},
		{
			name: "no port",
			text: "hdfs://namenode/data",
			want: URI{Scheme: "hdfs", Host: "namenode", Path: "/data"},
		},
		{
			name: "empty path",
			text: "hdfs://namenode",
			want: URI{Scheme: "hdfs", Host: "namenode"},
		},
		{
			name: "no authority",
			text: "hdfs:///user/bob/",
			want: URI{Scheme: "hdfs", Path: "/user/bob/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, nil, ParseAll)
			require.NoError(t, err)
			assert.Equal(t, &tt.want, got)
		})
	}
}

func TestParseRelativeAgainstBase(t *testing.T) {
	base, err := Parse("hdfs:///user/bob/", nil, ParseAll)
	require.NoError(t, err)

	t.Run("RelativeName", func(t *testing.T) {
		got, err := Parse("foo", base, ParsePath)
		require.NoError(t, err)
		assert.Equal(t, "/user/bob/foo", got.Path)
	})

	t.Run("RelativeSubdir", func(t *testing.T) {
		got, err := Parse("subdir/", base, ParseAll|AppendSlash)
		require.NoError(t, err)
		assert.Equal(t, "/user/bob/subdir/", got.Path)
		assert.Equal(t, "hdfs", got.Scheme)
	})

	t.Run("AbsolutePathIgnoresBasePath", func(t *testing.T) {
		got, err := Parse("/tmp/x", base, ParsePath)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/x", got.Path)
	})

	t.Run("AbsoluteURIIgnoresBase", func(t *testing.T) {
		got, err := Parse("hdfs://other/z", base, ParseAll)
		require.NoError(t, err)
		assert.Equal(t, "other", got.Host)
		assert.Equal(t, "/z", got.Path)
	})
}

func TestParseAppendSlash(t *testing.T) {
	got, err := Parse("hdfs:///user/bob", nil, ParseAll|AppendSlash)
	require.NoError(t, err)
	assert.Equal(t, "/user/bob/", got.Path)

	got, err = Parse("hdfs:///user/bob/", nil, ParseAll|AppendSlash)
	require.NoError(t, err)
	assert.Equal(t, "/user/bob/", got.Path)
}

func TestParseInvalidPort(t *testing.T) {
	_, err := Parse("hdfs://namenode:notaport/x", nil, ParseAll)
	require.Error(t, err)
}

func TestAuthorityAndString(t *testing.T) {
	u := &URI{Scheme: "hdfs", Host: "nn", Port: 8020, Path: "/a"}
	assert.Equal(t, "nn:8020", u.Authority())
	assert.Equal(t, "hdfs://nn:8020/a", u.String())

	u = &URI{Scheme: "hdfs", Host: "nn", Path: "/a"}
	assert.Equal(t, "nn", u.Authority())
}
