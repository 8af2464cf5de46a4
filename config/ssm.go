package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// LoadSSM overlays every parameter stored under prefix onto c. A parameter named
// /site/prod/ADMIN_TOKEN is stored as ADMIN_TOKEN. Values already present in
// the environment win over Parameter Store.
func LoadSSM(ctx context.Context, c map[string]string, prefix string) (int, error) {
	if prefix == "" {
		return 0, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return 0, fmt.Errorf("load aws config: %w", err)
	}

	return loadParameters(ctx, ssm.NewFromConfig(awsCfg), c, prefix)
}

func loadParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, c map[string]string, prefix string) (int, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return loaded, fmt.Errorf("read parameters under %s: %w", prefix, err)
		}

		for _, p := range page.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if key == "" || key == "/" || key == "." {
				continue
			}
			if existing, ok := c[key]; ok && strings.TrimSpace(existing) != "" {
				continue
			}
			c[key] = aws.ToString(p.Value)
			loaded++
		}
	}

	return loaded, nil
}
